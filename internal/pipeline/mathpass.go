package pipeline

import (
	"regexp"
	"strings"
)

// Pass is a named, pure text transformation.
// Apply must be total: input it does not recognize is returned unchanged.
type Pass struct {
	Name  string
	Apply func(string) string
}

// environments matches the LaTeX environments the usual dialect treats as
// self-delimiting. Each alternative is non-greedy so a match stops at the
// first closing tag of the same environment.
const environments = `\\begin\{align\}.*?\\end\{align\}` +
	`|\\begin\{aligned\}.*?\\end\{aligned\}` +
	`|\\begin\{equation\}.*?\\end\{equation\}`

// Precompiled regex patterns for performance.
var (
	// ```math ... ``` fenced block, interior may span lines
	fencedMathBlock = regexp.MustCompile("(?s)```math\n(.*?)\n```")

	// $`...`$ inline math, single line
	backtickInlineMath = regexp.MustCompile("\\$`(.*?)`\\$")

	// $$\n<env>\n$$ around a self-delimiting environment
	wrappedEnvironment = regexp.MustCompile(`(?s)\$\$\n(` + environments + `)\n\$\$`)

	// \n<env>\n without any delimiter of its own
	bareEnvironment = regexp.MustCompile(`(?s)\n(` + environments + `)\n`)

	// $$ ... $$ block math, single or multi line
	dollarBlockMath = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)

	// $...$ inline math, single line
	dollarInlineMath = regexp.MustCompile(`\$(.*?)\$`)

	// Content opening with a backtick span, e.g. `a+b`
	leadingCodeSpan = regexp.MustCompile("^`.*?`")
)

// Passes converting the GitHub dialect to the usual dialect.
var (
	// FencedToDollarBlock rewrites ```math fences as $$ blocks.
	FencedToDollarBlock = Pass{Name: "fenced-to-dollar-block", Apply: fencedToDollarBlock}

	// BacktickToDollarInline rewrites $`x`$ as $x$.
	BacktickToDollarInline = Pass{Name: "backtick-to-dollar-inline", Apply: backtickToDollarInline}

	// UnwrapEnvironments strips the $$ wrapper around align, aligned and
	// equation environments.
	UnwrapEnvironments = Pass{Name: "unwrap-environments", Apply: unwrapEnvironments}
)

// Passes converting the usual dialect to the GitHub dialect.
var (
	// WrapEnvironments puts bare align, aligned and equation environments
	// inside $$ so the block pass fences them like any other display math.
	WrapEnvironments = Pass{Name: "wrap-environments", Apply: wrapEnvironments}

	// DollarToFencedBlock rewrites $$ blocks as ```math fences.
	DollarToFencedBlock = Pass{Name: "dollar-to-fenced-block", Apply: dollarToFencedBlock}

	// DollarToBacktickInline rewrites $x$ as $`x`$.
	DollarToBacktickInline = Pass{Name: "dollar-to-backtick-inline", Apply: dollarToBacktickInline}
)

func fencedToDollarBlock(content string) string {
	return replaceMatches(fencedMathBlock, content, func(content string, loc []int) (string, bool) {
		return "$$\n" + trimmedGroup(content, loc) + "\n$$", true
	})
}

func backtickToDollarInline(content string) string {
	return replaceMatches(backtickInlineMath, content, func(content string, loc []int) (string, bool) {
		return "$" + trimmedGroup(content, loc) + "$", true
	})
}

func unwrapEnvironments(content string) string {
	return replaceMatches(wrappedEnvironment, content, func(content string, loc []int) (string, bool) {
		return "\n" + trimmedGroup(content, loc) + "\n", true
	})
}

// wrapEnvironments leaves an environment alone when it lies anywhere inside
// a ```math fence or a $$ block, not only when the delimiters touch it.
func wrapEnvironments(content string) string {
	spans := delimitedSpans(content)
	return replaceMatches(bareEnvironment, content, func(content string, loc []int) (string, bool) {
		if overlapsSpan(spans, loc[0], loc[1]) {
			return "", false
		}
		return "$$\n" + trimmedGroup(content, loc) + "\n$$", true
	})
}

func dollarToFencedBlock(content string) string {
	return replaceMatches(dollarBlockMath, content, func(content string, loc []int) (string, bool) {
		return "```math\n" + trimmedGroup(content, loc) + "\n```", true
	})
}

// dollarToBacktickInline skips matches whose content starts with a backtick
// span. This keeps $`x`$ stable but misses backticks that are not leading.
func dollarToBacktickInline(content string) string {
	return replaceMatches(dollarInlineMath, content, func(content string, loc []int) (string, bool) {
		inner := trimmedGroup(content, loc)
		if leadingCodeSpan.MatchString(inner) {
			return "", false
		}
		return "$`" + inner + "`$", true
	})
}

// delimitedSpans returns the byte ranges of content already covered by a
// ```math fence or a $$ block.
func delimitedSpans(content string) [][]int {
	spans := fencedMathBlock.FindAllStringIndex(content, -1)
	return append(spans, dollarBlockMath.FindAllStringIndex(content, -1)...)
}

// overlapsSpan reports whether [start, end) intersects one of spans.
func overlapsSpan(spans [][]int, start, end int) bool {
	for _, span := range spans {
		if start < span[1] && span[0] < end {
			return true
		}
	}
	return false
}

// trimmedGroup returns the first capture group of a match, trimmed.
func trimmedGroup(content string, loc []int) string {
	return strings.TrimSpace(content[loc[2]:loc[3]])
}

// replaceMatches replaces every non-overlapping match of re in content.
// repl receives the whole content and the submatch indexes of one match;
// returning false keeps that match verbatim.
func replaceMatches(re *regexp.Regexp, content string, repl func(content string, loc []int) (string, bool)) string {
	locs := re.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content
	}

	var b strings.Builder
	b.Grow(len(content))

	last := 0
	for _, loc := range locs {
		b.WriteString(content[last:loc[0]])
		if out, ok := repl(content, loc); ok {
			b.WriteString(out)
		} else {
			b.WriteString(content[loc[0]:loc[1]])
		}
		last = loc[1]
	}
	b.WriteString(content[last:])

	return b.String()
}
