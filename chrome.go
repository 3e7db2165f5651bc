package mdmath

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdmath/internal/pipeline"
)

// pdfPrinter abstracts printing a local HTML file to PDF to enable testing
// without a browser.
type pdfPrinter interface {
	PrintToPDF(ctx context.Context, htmlPath string) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ Renderer   = (*ChromeRenderer)(nil)
	_ pdfPrinter = (*rodPrinter)(nil)
)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.75
)

// ChromeRenderer renders Markdown to PDF without pandoc: Goldmark produces
// an HTML page with math kept as TeX, and headless Chrome prints it. When
// printing fails the HTML page is returned as a fallback artifact.
//
// The browser is started on first use and stopped by Close.
type ChromeRenderer struct {
	cfg       renderConfig
	artifacts artifacts
	html      pipeline.HTMLConverter
	printer   pdfPrinter

	mu     sync.Mutex // serializes renders on the single browser
	closed bool
}

// NewChromeRenderer creates a ChromeRenderer.
// WithTimeout and WithOutputDir apply; pandoc options are ignored.
func NewChromeRenderer(opts ...RenderOption) *ChromeRenderer {
	cfg := newRenderConfig(opts)
	return &ChromeRenderer{
		cfg:       cfg,
		artifacts: artifacts{outputDir: cfg.outputDir},
		html:      pipeline.NewGoldmarkConverter(),
		printer:   newRodPrinter(cfg.timeout),
	}
}

// Render converts markdown to <base>.html next to where the PDF goes, then
// prints it to <base>.pdf.
func (r *ChromeRenderer) Render(ctx context.Context, markdown, name string) (*Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}
	if err := validateMarkdown(markdown); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := documentBase(name)

	page, err := r.html.ToHTML(ctx, markdown, base)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	if dir := documentDir(name); dir != "" {
		page, err = pipeline.RewriteRelativePaths(page, dir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	htmlPath, err := r.artifacts.prepare(base, FormatHTML)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(htmlPath, []byte(page), 0o600); err != nil {
		return nil, fmt.Errorf("writing %s: %w", htmlPath, err)
	}

	pdf, printErr := r.print(ctx, htmlPath)
	if printErr == nil {
		pdfPath, err := r.artifacts.prepare(base, FormatPDF)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
			return nil, fmt.Errorf("writing %s: %w", pdfPath, err)
		}
		return &Artifact{Path: pdfPath, Format: FormatPDF}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return &Artifact{Path: htmlPath, Format: FormatHTML, Fallback: true, Cause: printErr}, nil
}

func (r *ChromeRenderer) print(ctx context.Context, htmlPath string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.timeout)
	defer cancel()
	return r.printer.PrintToPDF(ctx, htmlPath)
}

// Keep releases path from cleanup so it survives Close.
func (r *ChromeRenderer) Keep(path string) {
	r.artifacts.temps.Untrack(path)
}

// Close stops the browser and removes temporary artifacts.
// Calling Close twice is safe.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var browserErr error
	if r.printer != nil {
		browserErr = r.printer.Close()
	}
	return errors.Join(browserErr, r.artifacts.temps.Cleanup())
}

// rodPrinter implements pdfPrinter using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodPrinter struct {
	browser *rod.Browser
	timeout time.Duration
}

func newRodPrinter(timeout time.Duration) *rodPrinter {
	return &rodPrinter{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (p *rodPrinter) ensureBrowser() error {
	if p.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	p.browser = rod.New().ControlURL(u)
	if err := p.browser.Connect(); err != nil {
		p.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// PrintToPDF opens a local HTML file in headless Chrome and prints it.
// Returns explicit errors instead of panicking when browser operations fail.
func (p *rodPrinter) PrintToPDF(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.ensureBrowser(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, err
	}
	pageURL := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	page, err := p.browser.Page(proto.TargetCreateTarget{URL: pageURL.String()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(buildPDFOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// Close releases browser resources.
func (p *rodPrinter) Close() error {
	if p.browser != nil {
		err := p.browser.Close()
		p.browser = nil
		return err
	}
	return nil
}

// buildPDFOptions returns US Letter print settings with uniform margins.
func buildPDFOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
