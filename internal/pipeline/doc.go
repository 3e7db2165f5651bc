// Package pipeline holds the text passes behind the math dialect converter
// and the Markdown-to-HTML stage of the Chrome render engine.
//
// Dialect passes are named pure functions over strings:
//   - FencedToDollarBlock, BacktickToDollarInline, UnwrapEnvironments
//     (GitHub dialect to usual dialect)
//   - WrapEnvironments, DollarToFencedBlock, DollarToBacktickInline
//     (usual dialect to GitHub dialect)
//
// Ordering is decided by the root mdmath package; each pass here is
// independent and can be applied and tested on its own.
//
// The HTML stage protects math regions with placeholders before Goldmark
// runs and restores them afterwards as pandoc-style math spans, so TeX never
// goes through Markdown escaping.
package pipeline
