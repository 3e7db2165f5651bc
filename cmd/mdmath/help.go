package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert math between GitHub and dollar dialects")
	fmt.Fprintln(w, "  render      Render a Markdown file to PDF")
	fmt.Fprintln(w, "  doctor      Check pandoc, LaTeX and Chrome availability")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdmath help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath convert [flags] [path...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rewrite math in Markdown files in place.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  path    File or directory; \"-\" reads stdin and writes stdout.")
	fmt.Fprintln(w, "          Without paths, the folders listed in the config are converted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --to <dialect>        usual: ```math and $`x`$ to $$ and $x$ (default)")
	fmt.Fprintln(w, "                            github: $$ and $x$ to ```math and $`x`$")
	fmt.Fprintln(w, "      --ignore <name>       Skip directories with this name (repeatable)")
	fmt.Fprintln(w, "      --ext <suffix>        Convert files ending with suffix (default .md)")
	fmt.Fprintln(w, "  -n, --dry-run             Report changes without writing")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show unchanged files and timing")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath render [flags] <file.md>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a Markdown file to PDF and open it. The file is switched to")
	fmt.Fprintln(w, "dollar math while the engine runs and restored to GitHub math after.")
	fmt.Fprintln(w, "When PDF output fails, pandoc produces a .tex file and chrome an .html file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine:")
	fmt.Fprintln(w, "  -e, --engine <name>       pandoc (default) or chrome")
	fmt.Fprintln(w, "                            chrome prints math as TeX source, it does not typeset it")
	fmt.Fprintln(w, "      --pandoc <path>       pandoc executable")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per engine run (default 2m)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: temporary, removed on exit)")
	fmt.Fprintln(w, "      --keep                Keep the result after exit")
	fmt.Fprintln(w, "      --no-open             Do not open the result (implies --keep)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show engine and timing")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the render engines and their dependencies are available.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdmath version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdmath help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
