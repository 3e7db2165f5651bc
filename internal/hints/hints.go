// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForConverterNotFound returns hints when the pandoc binary cannot be run.
func ForConverterNotFound(binary string) string {
	hint := "install pandoc from https://pandoc.org/installing.html"
	if binary != "" && binary != "pandoc" {
		hint = "check that " + binary + " exists and is executable"
	}
	return format(hint + ", set MDMATH_PANDOC, or use --engine chrome")
}

// ForPDFFallback returns hints shown when PDF output failed and LaTeX was
// produced instead.
func ForPDFFallback() string {
	return formatHints([]string{
		"pandoc needs a LaTeX engine for PDF output (TeX Live, MiKTeX or tectonic)",
		"compile the .tex file manually or pass --pdf-engine through render.args",
	})
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents or slow LaTeX engines, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdmath/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdmath") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForNoProjectFolders returns hints when batch conversion has nothing to walk.
func ForNoProjectFolders() string {
	return format("pass files or directories to convert, or list them under 'folders:' in mdmath.yaml")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForEngineNotFound returns hints for unknown render engine names.
func ForEngineNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForDirection returns the accepted direction names.
func ForDirection() string {
	return format("use --to usual (from ```math) or --to github (from $$)")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
