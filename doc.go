// Package mdmath converts the math notation of Markdown documents between
// two dialects and renders documents to PDF.
//
// # Dialects
//
// The GitHub dialect writes display math as a fenced block and inline math
// with backtick-dollar delimiters:
//
//	```math
//	e^{i\pi} + 1 = 0
//	```
//
//	The sum $`a+b`$ is symmetric.
//
// The usual dialect, understood by pandoc and LaTeX-oriented tools, writes
// the same document with dollar delimiters and leaves align, aligned and
// equation environments bare:
//
//	$$
//	e^{i\pi} + 1 = 0
//	$$
//
//	The sum $a+b$ is symmetric.
//
// # Quick Start
//
// Convert text in memory:
//
//	usual := mdmath.Convert(text, mdmath.ToUsual)
//	github := mdmath.Convert(usual, mdmath.ToGithub)
//
// Convert every Markdown file under a directory, skipping some folders:
//
//	report := mdmath.ConvertTree(ctx, []string{"notes"}, mdmath.ToUsual, mdmath.BatchOptions{
//	    Ignore: []string{".git", "node_modules"},
//	})
//	fmt.Println(report.Processed(), "files processed")
//
// # Rendering
//
// A Renderer turns usual-dialect Markdown into a file on disk. PandocRenderer
// runs pandoc and falls back to LaTeX output when PDF generation fails;
// ChromeRenderer prints HTML through headless Chrome and falls back to the
// HTML page. Renderers own their temporary files and remove them on Close:
//
//	r := mdmath.NewPandocRenderer(mdmath.WithTimeout(time.Minute))
//	defer r.Close()
//
//	art, err := mdmath.RenderDocument(ctx, &mdmath.FileSource{Path: "notes.md"}, r, "notes.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if art.Fallback {
//	    log.Printf("PDF failed, wrote %s instead: %v", art.Path, art.Cause)
//	}
//
// RenderDocument converts the source to the usual dialect before rendering
// and converts it back to the GitHub dialect afterwards, on every exit path.
package mdmath
