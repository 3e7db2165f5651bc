package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/hints"
)

// Exit codes for the mdmath CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, failed batch files
	ExitRender  = 4 // Render engine errors (pandoc or browser)
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render engine errors (exit 4)
	if errors.Is(err, mdmath.ErrConverterNotFound) ||
		errors.Is(err, mdmath.ErrPDFFailed) ||
		errors.Is(err, mdmath.ErrFallbackFailed) ||
		errors.Is(err, mdmath.ErrHTMLConversion) ||
		errors.Is(err, mdmath.ErrBrowserConnect) ||
		errors.Is(err, mdmath.ErrPageCreate) ||
		errors.Is(err, mdmath.ErrPageLoad) ||
		errors.Is(err, mdmath.ErrPDFGeneration) {
		return ExitRender
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownEngine) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrTooManyRenderArgs) ||
		errors.Is(err, config.ErrNoProjectFolders) ||
		errors.Is(err, mdmath.ErrInvalidDirection) ||
		errors.Is(err, mdmath.ErrEmptyMarkdown) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, mdmath.ErrOutputDirectory) ||
		errors.Is(err, ErrConversionFailed) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, mdmath.ErrConverterNotFound):
		return hints.ForConverterNotFound("")
	case errors.Is(err, mdmath.ErrFallbackFailed):
		return hints.ForPDFFallback()
	case errors.Is(err, mdmath.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, config.ErrNoProjectFolders):
		return hints.ForNoProjectFolders()
	case errors.Is(err, mdmath.ErrOutputDirectory):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrUnknownEngine):
		return hints.ForEngineNotFound(config.Engines)
	case errors.Is(err, mdmath.ErrInvalidDirection):
		return hints.ForDirection()
	}
	return ""
}
