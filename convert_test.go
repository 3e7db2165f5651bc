package mdmath

// Notes:
// - Pass-level behavior is tested in internal/pipeline; these tests cover
//   ordering and the document-level properties of Convert.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestConvert - Document-level behavior
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		dir   Direction
		want  string
	}{
		{
			name:  "fenced block to usual",
			input: "```math\n  x^2 + y^2  \n```",
			dir:   ToUsual,
			want:  "$$\nx^2 + y^2\n$$",
		},
		{
			name:  "fenced environment unwrapped",
			input: "```math\n\\begin{align}x=1\\end{align}\n```",
			dir:   ToUsual,
			want:  "\n\\begin{align}x=1\\end{align}\n",
		},
		{
			name:  "bare environment fenced",
			input: "\n\\begin{align}x=1\\end{align}\n",
			dir:   ToGithub,
			want:  "```math\n\\begin{align}x=1\\end{align}\n```",
		},
		{
			name:  "inline to usual",
			input: "The sum $`a+b`$ is symmetric.",
			dir:   ToUsual,
			want:  "The sum $a+b$ is symmetric.",
		},
		{
			name:  "inline to github",
			input: "The sum $a+b$ is symmetric.",
			dir:   ToGithub,
			want:  "The sum $`a+b`$ is symmetric.",
		},
		{
			name:  "block before inline to github",
			input: "$$\nE = mc^2\n$$ and $x$",
			dir:   ToGithub,
			want:  "```math\nE = mc^2\n``` and $`x`$",
		},
		{
			name:  "mixed document to usual",
			input: "# Title\n\nLet $`f(x)`$ be:\n\n```math\nf(x) = x^2\n```\n\nDone.\n",
			dir:   ToUsual,
			want:  "# Title\n\nLet $f(x)$ be:\n\n$$\nf(x) = x^2\n$$\n\nDone.\n",
		},
		{
			name:  "mixed document to github",
			input: "# Title\n\nLet $f(x)$ be:\n\n$$\nf(x) = x^2\n$$\n\nDone.\n",
			dir:   ToGithub,
			want:  "# Title\n\nLet $`f(x)`$ be:\n\n```math\nf(x) = x^2\n```\n\nDone.\n",
		},
		{
			name:  "github fence with a line before an environment stays",
			input: "```math\nf(x) =\n\\begin{aligned}a\\end{aligned}\n```\n",
			dir:   ToGithub,
			want:  "```math\nf(x) =\n\\begin{aligned}a\\end{aligned}\n```\n",
		},
		{
			name:  "dollar block with a line before an environment to github",
			input: "$$\nf(x) =\n\\begin{aligned}a\\end{aligned}\n$$\n",
			dir:   ToGithub,
			want:  "```math\nf(x) =\n\\begin{aligned}a\\end{aligned}\n```\n",
		},
		{
			name:  "invalid direction is identity",
			input: "$x$",
			dir:   Direction(7),
			want:  "$x$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Convert(tt.input, tt.dir); got != tt.want {
				t.Errorf("Convert(%q, %s) = %q, want %q", tt.input, tt.dir, got, tt.want)
			}
		})
	}
}

func TestConvert_MathFreeIdentity(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain text",
		"# Heading\n\n- item\n- item\n\n```go\nfmt.Println(1)\n```\n",
		"windows\r\nline\r\nendings\r\n",
		"unicode: café, 数学, ∑",
	}

	for _, input := range inputs {
		for _, dir := range []Direction{ToUsual, ToGithub} {
			if got := Convert(input, dir); got != input {
				t.Errorf("Convert(%q, %s) = %q, want unchanged", input, dir, got)
			}
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	t.Parallel()

	docs := []string{
		"Inline $`a+b`$ here.",
		"```math\nx^2\n```",
		"Text\n\n```math\n\\frac{a}{b}\n```\n\nand $`c`$, $`d`$.\n",
	}

	for _, doc := range docs {
		usual := Convert(doc, ToUsual)
		back := Convert(usual, ToGithub)
		if back != doc {
			t.Errorf("round trip of %q = %q (via %q)", doc, back, usual)
		}
	}
}

func TestConvert_EnvironmentRoundTrip(t *testing.T) {
	t.Parallel()

	fenced := "```math\n\\begin{align}x=1\\end{align}\n```"

	usual := Convert(fenced, ToUsual)
	if usual != "\n\\begin{align}x=1\\end{align}\n" {
		t.Fatalf("ToUsual = %q", usual)
	}

	// Wrap first, then fence: the environment ends inside a math fence.
	wrapped := Passes(ToGithub)[0].Apply(usual)
	if wrapped != "$$\n\\begin{align}x=1\\end{align}\n$$" {
		t.Fatalf("after %s = %q", Passes(ToGithub)[0].Name, wrapped)
	}

	if got := Convert(usual, ToGithub); got != fenced {
		t.Errorf("ToGithub = %q, want %q", got, fenced)
	}
}

func TestConvert_Idempotent(t *testing.T) {
	t.Parallel()

	docs := []string{
		"```math\nx\n```\n$`y`$\n```math\n\\begin{equation}z\\end{equation}\n```",
		"$$\nx\n$$\n$y$\n\n\\begin{aligned}a\\end{aligned}\n",
		"$`a`$ and $b$ and $$c$$",
		"costs $5 and $10",
		"```math\nf(x) =\n\\begin{aligned}a\\end{aligned}\n```\n",
		"$$\nf(x) =\n\\begin{aligned}a\\end{aligned}\n$$\n",
	}

	for _, doc := range docs {
		for _, dir := range []Direction{ToUsual, ToGithub} {
			once := Convert(doc, dir)
			twice := Convert(once, dir)
			if once != twice {
				t.Errorf("Convert not idempotent for %s on %q: %q then %q", dir, doc, once, twice)
			}
		}
	}
}

func TestConvert_NoPanicOnOddInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"$", "$$", "$$$", "```math", "```math\n", "$`", "`$",
		"\\begin{align}", "\n\\end{align}\n",
		strings.Repeat("$", 101),
		"\xff\xfe invalid utf-8 $x$",
	}

	for _, input := range inputs {
		for _, dir := range []Direction{ToUsual, ToGithub} {
			_ = Convert(input, dir)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPasses - Ordering
// ---------------------------------------------------------------------------

func TestPasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  Direction
		want []string
	}{
		{ToUsual, []string{"fenced-to-dollar-block", "backtick-to-dollar-inline", "unwrap-environments"}},
		{ToGithub, []string{"wrap-environments", "dollar-to-fenced-block", "dollar-to-backtick-inline"}},
		{Direction(-1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			t.Parallel()

			got := Passes(tt.dir)
			if len(got) != len(tt.want) {
				t.Fatalf("Passes(%s) = %d passes, want %d", tt.dir, len(got), len(tt.want))
			}
			for i, p := range got {
				if p.Name != tt.want[i] {
					t.Errorf("pass %d = %q, want %q", i, p.Name, tt.want[i])
				}
			}
		})
	}
}

func TestPasses_ReturnsCopy(t *testing.T) {
	t.Parallel()

	got := Passes(ToUsual)
	got[0] = Pass{Name: "tampered"}

	if Passes(ToUsual)[0].Name != "fenced-to-dollar-block" {
		t.Error("Passes() exposed internal slice")
	}
}
