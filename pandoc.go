package mdmath

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"sync"

	"github.com/alnah/go-mdmath/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The command runs in its
// own process group, killed when ctx is done.
type ExecRunner struct{}

// Run executes name with args and returns its captured output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := process.Command(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return stdout.String(), stderr.String(), err
}

// Compile-time interface checks
var (
	_ CommandRunner = (*ExecRunner)(nil)
	_ Renderer      = (*PandocRenderer)(nil)
)

// PandocRenderer renders Markdown to PDF with pandoc. When the PDF run fails
// it runs pandoc again for a standalone LaTeX document, which is returned as
// a fallback artifact.
type PandocRenderer struct {
	cfg       renderConfig
	artifacts artifacts

	mu     sync.Mutex
	closed bool
}

// NewPandocRenderer creates a PandocRenderer.
// Use options to customize behavior (e.g., WithTimeout, WithOutputDir).
func NewPandocRenderer(opts ...RenderOption) *PandocRenderer {
	cfg := newRenderConfig(opts)
	return &PandocRenderer{
		cfg:       cfg,
		artifacts: artifacts{outputDir: cfg.outputDir},
	}
}

// Render writes markdown to a temporary file and runs
// "pandoc <tmp.md> -o <base>.pdf". On failure it runs
// "pandoc <tmp.md> -s -o <base>.tex" and returns that artifact with the PDF
// failure as Cause. Each run is bounded by the configured timeout.
func (r *PandocRenderer) Render(ctx context.Context, markdown, name string) (*Artifact, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateMarkdown(markdown); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := r.artifacts.temps.Write(markdown, "md")
	if err != nil {
		return nil, err
	}

	base := documentBase(name)
	sourceDir := documentDir(name)

	pdfPath, err := r.artifacts.prepare(base, FormatPDF)
	if err != nil {
		return nil, err
	}

	_, stderr, err := r.run(ctx, r.args(sourceDir, src, "-o", pdfPath))
	if err == nil {
		return &Artifact{Path: pdfPath, Format: FormatPDF}, nil
	}
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s: %v", ErrConverterNotFound, r.cfg.pandoc, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cause := fmt.Errorf("%w: %s", ErrPDFFailed, failureText(stderr, "", err))

	texPath, err := r.artifacts.prepare(base, FormatTeX)
	if err != nil {
		return nil, err
	}

	stdout, stderr, err := r.run(ctx, r.args(sourceDir, src, "-s", "-o", texPath))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s (after %w)", ErrFallbackFailed, failureText(stderr, stdout, err), cause)
	}

	return &Artifact{Path: texPath, Format: FormatTeX, Fallback: true, Cause: cause}, nil
}

// args builds a pandoc argument list: input, output flags, resource path,
// then user arguments.
func (r *PandocRenderer) args(sourceDir, src string, output ...string) []string {
	args := make([]string, 0, 2+len(output)+len(r.cfg.extraArgs))
	args = append(args, src)
	args = append(args, output...)
	if sourceDir != "" {
		args = append(args, "--resource-path="+sourceDir)
	}
	return append(args, r.cfg.extraArgs...)
}

// run invokes pandoc under its own timeout.
func (r *PandocRenderer) run(ctx context.Context, args []string) (string, string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.timeout)
	defer cancel()

	stdout, stderr, err := r.cfg.runner.Run(ctx, r.cfg.pandoc, args...)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", r.cfg.timeout, err)
	}
	return stdout, stderr, err
}

// Keep releases path from cleanup so it survives Close.
func (r *PandocRenderer) Keep(path string) {
	r.artifacts.temps.Untrack(path)
}

// Close removes temporary files and artifacts left in the temporary
// directory. Calling Close twice is safe.
func (r *PandocRenderer) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	return r.artifacts.temps.Cleanup()
}

func (r *PandocRenderer) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}
	return nil
}

// isNotFound reports whether err means the executable could not be started.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

// failureText picks the most useful description of a failed run:
// stderr, then stdout, then the error itself.
func failureText(stderr, stdout string, err error) string {
	if s := strings.TrimSpace(stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(stdout); s != "" {
		return s
	}
	return err.Error()
}
