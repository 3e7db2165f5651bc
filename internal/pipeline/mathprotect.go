package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Math placeholders use Unicode Private Use Area characters.
// They never appear in real documents and pass through Goldmark unchanged,
// so TeX bodies survive Markdown processing without escaping rules applying
// to backslashes, underscores or asterisks.
const (
	mathStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	mathEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// Precompiled regex patterns for performance.
var (
	// Fenced code blocks, which are never scanned for math
	fencedCode = regexp.MustCompile("(?ms)^(?:```|~~~)[^\n]*\n.*?^(?:```|~~~)[ \t]*$")

	// Display math: $$ blocks and bare environments
	displayMath = regexp.MustCompile(`(?s)\$\$(.*?)\$\$|(` + environments + `)`)

	// Placeholder emitted by ProtectMath
	mathPlaceholder = regexp.MustCompile(mathStartPlaceholder + `(\d+)` + mathEndPlaceholder)
)

// MathRegion is a math span cut out of a document before HTML conversion.
type MathRegion struct {
	TeX     string
	Display bool
}

// ProtectMath replaces usual-dialect math regions outside fenced code blocks
// with placeholders. The returned regions are indexed by placeholder number.
func ProtectMath(content string) (string, []MathRegion) {
	var regions []MathRegion

	protect := func(segment string) string {
		segment = replaceMatches(displayMath, segment, func(segment string, loc []int) (string, bool) {
			tex := segment[loc[0]:loc[1]]
			if loc[2] >= 0 {
				tex = segment[loc[2]:loc[3]]
			}
			regions = append(regions, MathRegion{TeX: strings.TrimSpace(tex), Display: true})
			return placeholder(len(regions) - 1), true
		})
		return replaceMatches(dollarInlineMath, segment, func(segment string, loc []int) (string, bool) {
			tex := strings.TrimSpace(segment[loc[2]:loc[3]])
			if tex == "" {
				return "", false
			}
			regions = append(regions, MathRegion{TeX: tex})
			return placeholder(len(regions) - 1), true
		})
	}

	var b strings.Builder
	last := 0
	for _, loc := range fencedCode.FindAllStringIndex(content, -1) {
		b.WriteString(protect(content[last:loc[0]]))
		b.WriteString(content[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(protect(content[last:]))

	return b.String(), regions
}

// RestoreMath converts placeholders in rendered HTML to math spans using the
// same markup pandoc emits for TeX math in HTML output.
func RestoreMath(content string, regions []MathRegion) string {
	if len(regions) == 0 {
		return content
	}
	return mathPlaceholder.ReplaceAllStringFunc(content, func(m string) string {
		idx, err := strconv.Atoi(m[len(mathStartPlaceholder) : len(m)-len(mathEndPlaceholder)])
		if err != nil || idx >= len(regions) {
			return m
		}
		r := regions[idx]
		if r.Display {
			return `<span class="math display">\[` + html.EscapeString(r.TeX) + `\]</span>`
		}
		return `<span class="math inline">\(` + html.EscapeString(r.TeX) + `\)</span>`
	})
}

func placeholder(idx int) string {
	return mathStartPlaceholder + strconv.Itoa(idx) + mathEndPlaceholder
}
