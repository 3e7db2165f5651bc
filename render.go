package mdmath

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// Artifact formats.
const (
	FormatPDF  = "pdf"
	FormatTeX  = "tex"
	FormatHTML = "html"
)

// Renderer turns usual-dialect Markdown into a file.
//
// name identifies the document, usually its file path: the artifact is named
// after its base name, and its directory resolves relative resources such as
// images. Temporary files, and artifacts written to the temporary directory,
// are removed by Close unless released with Keep.
type Renderer interface {
	Render(ctx context.Context, markdown, name string) (*Artifact, error)
	Keep(path string)
	Close() error
}

// Artifact is a rendered file.
type Artifact struct {
	Path     string
	Format   string // FormatPDF, FormatTeX or FormatHTML
	Fallback bool   // Produced after the primary output failed
	Cause    error  // Primary failure when Fallback is true
}

// defaultTimeout bounds each external invocation when no timeout is set.
// LaTeX engines are slow on first run while they build font caches.
const defaultTimeout = 2 * time.Minute

// defaultPandoc is the pandoc binary looked up on PATH.
const defaultPandoc = "pandoc"

// untitled names documents rendered without a name.
const untitled = "untitled"

// RenderOption configures a renderer.
type RenderOption func(*renderConfig)

type renderConfig struct {
	timeout   time.Duration
	outputDir string
	extraArgs []string
	pandoc    string
	runner    CommandRunner
}

func newRenderConfig(opts []RenderOption) renderConfig {
	cfg := renderConfig{
		timeout: defaultTimeout,
		pandoc:  defaultPandoc,
		runner:  &ExecRunner{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTimeout bounds each external invocation (pandoc run or page print).
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) RenderOption {
	if d <= 0 {
		panic("mdmath: WithTimeout duration must be positive")
	}
	return func(c *renderConfig) {
		c.timeout = d
	}
}

// WithOutputDir writes artifacts to dir instead of the temporary directory.
// Artifacts written there are never removed by Close.
func WithOutputDir(dir string) RenderOption {
	return func(c *renderConfig) {
		c.outputDir = dir
	}
}

// WithExtraArgs appends arguments to every pandoc invocation,
// e.g. "--pdf-engine=xelatex".
func WithExtraArgs(args ...string) RenderOption {
	return func(c *renderConfig) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithPandocBinary sets the pandoc executable. Empty keeps the default.
func WithPandocBinary(path string) RenderOption {
	return func(c *renderConfig) {
		if path != "" {
			c.pandoc = path
		}
	}
}

// WithRunner replaces the command runner used to invoke pandoc.
func WithRunner(r CommandRunner) RenderOption {
	return func(c *renderConfig) {
		if r != nil {
			c.runner = r
		}
	}
}

// artifacts places artifact files and tracks the ones Close must remove.
type artifacts struct {
	outputDir string
	temps     fileutil.TempSet
}

// prepare returns the artifact path for base and ext. The path is tracked
// for removal when it lives in the temporary directory and did not exist
// before, so a file the user already had there is never deleted.
func (a *artifacts) prepare(base, ext string) (string, error) {
	dir := a.outputDir
	if dir == "" {
		dir = os.TempDir()
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutputDirectory, dir, err)
	}

	path := filepath.Join(dir, base+"."+ext)
	if a.outputDir == "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			a.temps.Track(path)
		}
	}
	return path, nil
}

// documentBase returns the artifact base name for a document name.
func documentBase(name string) string {
	if base := fileutil.BaseName(name); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return untitled
}

// documentDir returns the directory of a document name, or "" when name has
// no directory part.
func documentDir(name string) string {
	if !fileutil.IsFilePath(name) {
		return ""
	}
	return filepath.Dir(name)
}

// validateMarkdown rejects blank input.
func validateMarkdown(markdown string) error {
	if strings.TrimSpace(markdown) == "" {
		return ErrEmptyMarkdown
	}
	return nil
}

// withTimeout derives a context bounded by timeout.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
