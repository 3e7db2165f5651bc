package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-mdmath"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and fake renderer
// ---------------------------------------------------------------------------

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	mu     sync.Mutex
	opened []string
}

// newTestEnv returns an Environment reading variables from vars only and
// recording opened paths instead of launching a viewer.
func newTestEnv(vars map[string]string) *testEnv {
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	te.Environment = &Environment{
		Now:    time.Now,
		Stdout: te.stdout,
		Stderr: te.stderr,
		Stdin:  bytes.NewBufferString("\n"),
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		Open: func(_ context.Context, path string) error {
			te.mu.Lock()
			defer te.mu.Unlock()
			te.opened = append(te.opened, path)
			return nil
		},
		NewRenderer: newRenderer,
	}
	return te
}

func (te *testEnv) Opened() []string {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]string(nil), te.opened...)
}

// fakeRenderer records what it renders and writes a placeholder artifact.
type fakeRenderer struct {
	mu       sync.Mutex
	dir      string
	format   string
	fallback error // when set, the artifact is a fallback with this cause
	err      error
	markdown string
	name     string
	kept     []string
	closed   int
	engine   string
	opts     int
}

func (r *fakeRenderer) Render(_ context.Context, markdown, name string) (*mdmath.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markdown, r.name = markdown, name
	if r.err != nil {
		return nil, r.err
	}
	format := r.format
	if format == "" {
		format = mdmath.FormatPDF
	}
	path := filepath.Join(r.dir, "out."+format)
	if err := os.WriteFile(path, []byte("artifact"), 0o600); err != nil {
		return nil, err
	}
	return &mdmath.Artifact{Path: path, Format: format, Fallback: r.fallback != nil, Cause: r.fallback}, nil
}

func (r *fakeRenderer) Keep(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kept = append(r.kept, path)
}

func (r *fakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

// factory returns a RendererFactory handing out r and recording the engine.
func (r *fakeRenderer) factory() RendererFactory {
	return func(engine string, opts ...mdmath.RenderOption) (mdmath.Renderer, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.engine = engine
		r.opts = len(opts)
		return r, nil
	}
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const (
	githubDoc = "# Doc\n\n```math\nx^2\n```\n\nInline $`y`$.\n"
	usualDoc  = "# Doc\n\n$$\nx^2\n$$\n\nInline $y$.\n"
)
