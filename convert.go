package mdmath

import (
	"slices"

	"github.com/alnah/go-mdmath/internal/pipeline"
)

// Pass is a named text transformation applied by Convert.
type Pass = pipeline.Pass

// Pass order matters: a pass must never re-match text an earlier pass
// produced in the same run.
var (
	toUsualPasses = []Pass{
		pipeline.FencedToDollarBlock,
		pipeline.BacktickToDollarInline,
		pipeline.UnwrapEnvironments,
	}

	// Environments are wrapped first so the block pass fences them like any
	// other display math; blocks go before inline so $$ is not read as two $.
	toGithubPasses = []Pass{
		pipeline.WrapEnvironments,
		pipeline.DollarToFencedBlock,
		pipeline.DollarToBacktickInline,
	}
)

// Passes returns the ordered passes Convert applies for dir.
// The slice is a copy. An invalid direction has no passes.
func Passes(dir Direction) []Pass {
	return slices.Clone(passesFor(dir))
}

func passesFor(dir Direction) []Pass {
	switch dir {
	case ToUsual:
		return toUsualPasses
	case ToGithub:
		return toGithubPasses
	default:
		return nil
	}
}

// Convert rewrites the math regions of a Markdown document into the dialect
// selected by dir. Text without math is returned unchanged, and converting
// output again in the same direction is a no-op. Convert is safe for
// concurrent use.
func Convert(text string, dir Direction) string {
	for _, p := range passesFor(dir) {
		text = p.Apply(text)
	}
	return text
}
