package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
)

// ErrConversionFailed reports a batch in which some files or roots failed.
var ErrConversionFailed = errors.New("conversion failed")

// stdinPath selects stdin-to-stdout mode.
const stdinPath = "-"

// runConvertCmd converts files, directories, stdin, or the project folders
// listed in the config file.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, paths, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printConvertUsage(env.Stdout)
			return nil
		}
		return err
	}

	warnUnknownEnvVars(env.Stderr, env.environ())

	cfg, err := loadConfig(flags.common.config, loadEnvConfig(env.getenv))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dir, err := resolveDirection(flags.to, cfg)
	if err != nil {
		return err
	}

	if slices.Contains(paths, stdinPath) {
		if len(paths) > 1 {
			return fmt.Errorf("%w: %q cannot be combined with other paths", ErrUsage, stdinPath)
		}
		return convertStream(env.Stdin, env.Stdout, dir)
	}

	roots := paths
	if len(roots) == 0 {
		roots, err = cfg.ResolveFolders()
		if err != nil {
			return err
		}
	}

	opts := batchOptions(flags, cfg)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Converting to %s with %d worker(s)\n", dir, mdmath.ResolveWorkers(opts.Workers))
	}

	start := env.now()
	report := mdmath.ConvertTree(ctx, roots, dir, opts)
	printReport(env, report, flags, env.now().Sub(start))

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := report.Failed() + len(report.RootErrors); n > 0 {
		return fmt.Errorf("%w: %d error(s)", ErrConversionFailed, n)
	}
	return nil
}

// resolveDirection picks the direction: flag, then config, then ToUsual.
func resolveDirection(flagTo string, cfg *config.Config) (mdmath.Direction, error) {
	name := flagTo
	if name == "" {
		name = cfg.Direction
	}
	if name == "" {
		return mdmath.ToUsual, nil
	}
	return mdmath.ParseDirection(name)
}

// batchOptions merges flags into the config values (CLI wins).
// Ignored names from both sources apply.
func batchOptions(flags *convertFlags, cfg *config.Config) mdmath.BatchOptions {
	opts := mdmath.BatchOptions{
		Ignore:     slices.Concat(cfg.IgnoredFolders, flags.ignore),
		Extensions: cfg.Extensions,
		Workers:    cfg.Workers,
		DryRun:     flags.dryRun,
	}
	if len(flags.extensions) > 0 {
		opts.Extensions = flags.extensions
	}
	if flags.workers > 0 {
		opts.Workers = flags.workers
	}
	return opts
}

// convertStream converts r to w.
func convertStream(r io.Reader, w io.Writer, dir mdmath.Direction) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if _, err := io.WriteString(w, mdmath.Convert(string(data), dir)); err != nil {
		return fmt.Errorf("writing stdout: %w", err)
	}
	return nil
}

// printReport outputs per-file status lines and the summary.
// Failures always go to stderr; other lines are hidden by --quiet.
func printReport(env *Environment, report *mdmath.BatchReport, flags *convertFlags, elapsed time.Duration) {
	quiet, verbose := flags.common.quiet, flags.common.verbose

	for _, err := range report.RootErrors {
		fmt.Fprintf(env.Stderr, "FAILED %v\n", err)
	}

	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", f.Path, f.Err)
		case quiet:
		case f.Changed && flags.dryRun:
			fmt.Fprintf(env.Stdout, "Would convert %s\n", f.Path)
		case f.Changed:
			fmt.Fprintf(env.Stdout, "Converted %s\n", f.Path)
		default:
			fmt.Fprintf(env.Stdout, "Unchanged %s\n", f.Path)
		}
	}

	if quiet {
		return
	}
	fmt.Fprintf(env.Stdout, "\n%d processed, %d changed, %d failed\n", report.Processed(), report.Changed(), report.Failed())
	if verbose {
		fmt.Fprintf(env.Stdout, "Done in %v\n", elapsed.Round(time.Millisecond))
	}
}
