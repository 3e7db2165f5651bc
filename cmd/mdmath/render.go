package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
	"github.com/alnah/go-mdmath/internal/hints"
)

// ErrUnknownEngine reports a render engine name that is not supported.
var ErrUnknownEngine = errors.New("unknown render engine")

// defaultRenderTimeout bounds each engine run when neither flag, env nor
// config sets a timeout.
const defaultRenderTimeout = 2 * time.Minute

// renderSettings is the merged result of flags, env and config.
type renderSettings struct {
	engine    string
	outputDir string
	pandoc    string
	args      []string
	timeout   time.Duration
	open      bool
	keep      bool
}

// runRenderCmd renders one Markdown file. The file is switched to the usual
// dialect while the engine runs and restored to the GitHub dialect after.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRenderUsage(env.Stdout)
			return nil
		}
		return err
	}
	if len(paths) != 1 {
		return fmt.Errorf("%w: render takes exactly one file, got %d", ErrUsage, len(paths))
	}
	path := paths[0]

	warnUnknownEnvVars(env.Stderr, env.environ())

	cfg, err := loadConfig(flags.common.config, loadEnvConfig(env.getenv))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	settings, err := mergeRenderSettings(flags, cfg)
	if err != nil {
		return err
	}

	renderer, err := env.NewRenderer(settings.engine, settings.options()...)
	if err != nil {
		return err
	}

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Rendering %s with %s (timeout %s)\n", path, settings.engine, settings.timeout)
	}

	start := env.now()
	art, err := mdmath.RenderDocument(ctx, &mdmath.FileSource{Path: path}, renderer, path)
	if err != nil {
		return errors.Join(err, renderer.Close())
	}

	if art.Fallback {
		fmt.Fprintf(env.Stderr, "warning: %v%s\n", art.Cause, fallbackHint(art))
	}
	if !flags.common.quiet {
		if flags.common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", path, art.Path, env.now().Sub(start).Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", art.Path)
		}
	}

	if settings.keep {
		renderer.Keep(art.Path)
	}
	if settings.open {
		if err := env.Open(ctx, art.Path); err != nil {
			fmt.Fprintf(env.Stderr, "warning: %v\n", err)
		} else if !settings.keep {
			// The viewer reads the file after we return; hold it until the user is done.
			fmt.Fprintln(env.Stderr, "Press Enter to remove the temporary files...")
			waitForEnter(ctx, env.Stdin)
		}
	}

	return renderer.Close()
}

// mergeRenderSettings combines flags with the config (CLI wins).
// Without --open, a result in the temporary directory is kept, since
// nothing else would ever read it.
func mergeRenderSettings(flags *renderFlags, cfg *config.Config) (*renderSettings, error) {
	s := &renderSettings{
		engine:    firstNonEmpty(flags.engine, cfg.Render.Engine, config.EnginePandoc),
		outputDir: firstNonEmpty(flags.output, cfg.Render.OutputDir),
		pandoc:    firstNonEmpty(flags.pandoc, cfg.Render.Pandoc),
		args:      cfg.Render.Args,
		timeout:   defaultRenderTimeout,
		open:      !flags.noOpen && !cfg.Render.NoOpen,
		keep:      flags.keep,
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: --timeout %q: must be a positive duration", ErrUsage, flags.timeout)
		}
		s.timeout = d
	} else {
		d, err := cfg.Render.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		if d > 0 {
			s.timeout = d
		}
	}

	if !s.open {
		s.keep = true
	}
	return s, nil
}

// options converts the settings to renderer options.
func (s *renderSettings) options() []mdmath.RenderOption {
	opts := []mdmath.RenderOption{
		mdmath.WithTimeout(s.timeout),
		mdmath.WithPandocBinary(s.pandoc),
	}
	if s.outputDir != "" {
		opts = append(opts, mdmath.WithOutputDir(s.outputDir))
	}
	if len(s.args) > 0 {
		opts = append(opts, mdmath.WithExtraArgs(s.args...))
	}
	return opts
}

// fallbackHint explains a fallback artifact.
func fallbackHint(art *mdmath.Artifact) string {
	if h := hintFor(art.Cause); h != "" {
		return h
	}
	if art.Format == mdmath.FormatTeX {
		return hints.ForPDFFallback()
	}
	return ""
}

// waitForEnter blocks until a line is read from r, r is exhausted, or ctx
// is done.
func waitForEnter(ctx context.Context, r io.Reader) {
	if r == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(r).ReadString('\n')
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
