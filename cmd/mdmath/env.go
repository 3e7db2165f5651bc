package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/process"
)

// RendererFactory builds the render engine named engine.
type RendererFactory func(engine string, opts ...mdmath.RenderOption) (mdmath.Renderer, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment variables, the viewer and the render engines.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	Stdin       io.Reader
	Getenv      func(string) string
	Environ     func() []string
	Open        func(ctx context.Context, path string) error
	NewRenderer RendererFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:         time.Now,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		Open:        process.Open,
		NewRenderer: newRenderer,
	}
}

// getenv reads a variable, falling back to the process environment when
// Getenv is not set.
func (e *Environment) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}

func (e *Environment) environ() []string {
	if e.Environ == nil {
		return os.Environ()
	}
	return e.Environ()
}

func (e *Environment) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// newRenderer is the production RendererFactory.
func newRenderer(engine string, opts ...mdmath.RenderOption) (mdmath.Renderer, error) {
	switch engine {
	case config.EnginePandoc:
		return mdmath.NewPandocRenderer(opts...), nil
	case config.EngineChrome:
		return mdmath.NewChromeRenderer(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}
