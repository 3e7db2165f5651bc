package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage reports invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	to         string
	workers    int
	ignore     []string
	extensions []string
	dryRun     bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common  commonFlags
	engine  string
	output  string
	timeout string
	pandoc  string
	noOpen  bool
	keep    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// newConvertFlagSet registers the convert flags on a new FlagSet.
// Shared by parsing and shell completion.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.StringVar(&f.to, "to", "", "target dialect: usual or github (default usual)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringArrayVar(&f.ignore, "ignore", nil, "directory name to skip (repeatable)")
	fs.StringArrayVar(&f.extensions, "ext", nil, "file suffix to convert (repeatable, default .md)")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "report changes without writing")
	addCommonFlags(fs, &f.common)
	return fs
}

// newRenderFlagSet registers the render flags on a new FlagSet.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVarP(&f.engine, "engine", "e", "", "render engine: pandoc or chrome (default pandoc)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: temporary)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "timeout per engine run (e.g., 30s, 2m)")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc executable")
	fs.BoolVar(&f.noOpen, "no-open", false, "do not open the result")
	fs.BoolVar(&f.keep, "keep", false, "keep the result after exit")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseFlags parses args on fs silently: errors are returned wrapped in
// ErrUsage and help requests as flag.ErrHelp.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	rest, err := parseFlags(newConvertFlagSet(f), args)
	if err != nil {
		return nil, nil, err
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrUsage, f.workers)
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return f, rest, nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	rest, err := parseFlags(newRenderFlagSet(f), args)
	if err != nil {
		return nil, nil, err
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return f, rest, nil
}
