package main

// Notes:
// - DefaultEnv: every dependency is wired.
// - Environment fallbacks: a partially filled Environment still works.
// - newRenderer: engine names map to the two engines; anything else is a
//   usage error. The renderers are closed without rendering.

import (
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
)

// ---------------------------------------------------------------------------
// TestDefaultEnv - Production wiring
// ---------------------------------------------------------------------------

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()
	if env.Now == nil || env.Stdout == nil || env.Stderr == nil || env.Stdin == nil {
		t.Error("DefaultEnv() left I/O or clock unset")
	}
	if env.Getenv == nil || env.Environ == nil {
		t.Error("DefaultEnv() left environment access unset")
	}
	if env.Open == nil || env.NewRenderer == nil {
		t.Error("DefaultEnv() left viewer or renderer factory unset")
	}
}

func TestEnvironment_Fallbacks(t *testing.T) {
	t.Parallel()

	env := &Environment{}
	if env.now().IsZero() {
		t.Error("now() returned zero time")
	}
	_ = env.environ()
	_ = env.getenv("MDMATH_TEST_UNSET_VARIABLE")

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	env = &Environment{
		Now:    func() time.Time { return fixed },
		Getenv: func(string) string { return "value" },
	}
	if !env.now().Equal(fixed) {
		t.Errorf("now() = %v, want %v", env.now(), fixed)
	}
	if got := env.getenv("ANY"); got != "value" {
		t.Errorf("getenv() = %q, want value", got)
	}
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Engine selection
// ---------------------------------------------------------------------------

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine  string
		wantErr error
		check   func(mdmath.Renderer) bool
	}{
		{
			engine: config.EnginePandoc,
			check:  func(r mdmath.Renderer) bool { _, ok := r.(*mdmath.PandocRenderer); return ok },
		},
		{
			engine: config.EngineChrome,
			check:  func(r mdmath.Renderer) bool { _, ok := r.(*mdmath.ChromeRenderer); return ok },
		},
		{
			engine:  "wkhtmltopdf",
			wantErr: ErrUnknownEngine,
		},
		{
			engine:  "",
			wantErr: ErrUnknownEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			t.Parallel()

			r, err := newRenderer(tt.engine, mdmath.WithTimeout(time.Second))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("newRenderer(%q) error = %v, want %v", tt.engine, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("newRenderer(%q) unexpected error: %v", tt.engine, err)
			}
			defer func() { _ = r.Close() }()
			if !tt.check(r) {
				t.Errorf("newRenderer(%q) returned %T", tt.engine, r)
			}
		})
	}
}
