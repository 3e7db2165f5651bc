package mdmath

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown    = errors.New("markdown content cannot be empty")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrRendererClosed   = errors.New("renderer is closed")
	ErrOutputDirectory  = errors.New("cannot create output directory")

	// Pandoc engine errors.
	ErrConverterNotFound = errors.New("document converter not found")
	ErrPDFFailed         = errors.New("PDF generation failed")
	ErrFallbackFailed    = errors.New("LaTeX fallback failed")

	// Chrome engine errors.
	ErrHTMLConversion = errors.New("HTML conversion failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)
