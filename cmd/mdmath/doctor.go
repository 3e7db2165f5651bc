package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
		"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-mdmath/internal/hints"
	"github.com/alnah/go-mdmath/internal/process"
)

// versionTimeout bounds each "--version" probe.
const versionTimeout = 10 * time.Second

// latexEngines are the PDF engines pandoc can drive, in its preference order.
var latexEngines = []string{"pdflatex", "xelatex", "lualatex", "tectonic"}

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Pandoc   pandocInfo `json:"pandoc"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// pandocInfo holds pandoc and LaTeX detection results.
type pandocInfo struct {
	Found   bool     `json:"found"`
	Path    string   `json:"path,omitempty"`
	Version string   `json:"version,omitempty"`
	LaTeX   []string `json:"latex_engines,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	Pandoc     string `json:"mdmath_pandoc"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: %v: unknown argument %q\n", ErrUsage, arg)
			return ExitUsage
		}
	}

	result := runDoctor(env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Pandoc:     env.getenv("MDMATH_PANDOC"),
			NoSandbox:  env.getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.getenv("ROD_BROWSER_BIN"),
		},
	}

	checkPandoc(result)
	checkChrome(result)
	checkEnvironment(result, env)
	checkSystem(result)

	if !result.Pandoc.Found && !result.Chrome.Found {
		result.Errors = append(result.Errors,
			"no render engine available: install pandoc or Chrome")
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkPandoc detects pandoc and the LaTeX engines it needs for PDF output.
func checkPandoc(result *doctorResult) {
	binary := result.Env.Pandoc
	if binary == "" {
		binary = "pandoc"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("pandoc not found (%s): the pandoc engine is unavailable", binary))
		return
	}

	result.Pandoc.Found = true
	result.Pandoc.Path = path
	if v, err := probeVersion(path); err == nil {
		result.Pandoc.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get pandoc version: %v", err))
	}

	for _, engine := range latexEngines {
		if _, err := exec.LookPath(engine); err == nil {
			result.Pandoc.LaTeX = append(result.Pandoc.LaTeX, engine)
		}
	}
	if len(result.Pandoc.LaTeX) == 0 {
		result.Warnings = append(result.Warnings,
			"no LaTeX engine found: pandoc will produce .tex instead of PDF")
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found: the chrome engine will download Chromium on first use")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	if v, err := probeVersion(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	result.Env.Container = hints.IsInContainer() || env.getenv("container") != "" ||
		env.getenv("KUBERNETES_SERVICE_HOST") != ""

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Chrome.Found && (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temporary directory used for render artifacts.
func checkSystem(result *doctorResult) {
	probe, err := os.CreateTemp("", "mdmath-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory %s is not writable: %v", os.TempDir(), err))
		return
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	result.System.TempWritable = true
}

// probeVersion runs "<path> --version" and returns its first line.
func probeVersion(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := process.Command(ctx, path, "--version").Output()
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(first), nil
}

// Line markers for the human report.
const (
	markOK    = "[OK]"
	markWarn  = "[WARN]"
	markError = "[ERROR]"
)

// reportSection is one titled block of the human doctor report.
type reportSection struct {
	title string
	lines [][2]string // marker, text
}

// doctorSections lays out the per-component blocks of the report.
func doctorSections(r *doctorResult) []reportSection {
	pandoc := reportSection{title: "Pandoc"}
	if r.Pandoc.Found {
		pandoc.lines = append(pandoc.lines, [2]string{markOK, "Found at " + r.Pandoc.Path})
		if r.Pandoc.Version != "" {
			pandoc.lines = append(pandoc.lines, [2]string{markOK, "Version: " + r.Pandoc.Version})
		}
		if len(r.Pandoc.LaTeX) > 0 {
			pandoc.lines = append(pandoc.lines, [2]string{markOK, "LaTeX: " + strings.Join(r.Pandoc.LaTeX, ", ")})
		} else {
			pandoc.lines = append(pandoc.lines, [2]string{markWarn, "LaTeX: none"})
		}
	} else {
		pandoc.lines = append(pandoc.lines, [2]string{markWarn, "Not found"})
	}

	chrome := reportSection{title: "Chrome/Chromium"}
	if r.Chrome.Found {
		chrome.lines = append(chrome.lines, [2]string{markOK, "Found at " + r.Chrome.Path})
		if r.Chrome.Version != "" {
			chrome.lines = append(chrome.lines, [2]string{markOK, "Version: " + r.Chrome.Version})
		}
		sandbox := "Sandbox: enabled"
		if !r.Chrome.Sandbox {
			sandbox = "Sandbox: disabled (ROD_NO_SANDBOX=1)"
		}
		chrome.lines = append(chrome.lines, [2]string{markOK, sandbox})
	} else {
		chrome.lines = append(chrome.lines, [2]string{markWarn, "Not found"})
	}

	environment := reportSection{title: "Environment", lines: [][2]string{
		{markOK, fmt.Sprintf("Platform: %s/%s", r.Env.OS, r.Env.Arch)},
	}}
	if r.Env.Container {
		environment.lines = append(environment.lines, [2]string{markOK, "Container: detected"})
	}
	if r.Env.CI {
		environment.lines = append(environment.lines, [2]string{markOK, "CI: detected"})
	}

	system := reportSection{title: "System", lines: [][2]string{{markOK, "Temp directory: writable"}}}
	if !r.System.TempWritable {
		system.lines[0] = [2]string{markError, "Temp directory: not writable"}
	}

	sections := []reportSection{pandoc, chrome, environment, system}
	if len(r.Warnings) > 0 {
		sections = append(sections, listSection("Warnings:", markWarn, r.Warnings))
	}
	if len(r.Errors) > 0 {
		sections = append(sections, listSection("Errors:", markError, r.Errors))
	}
	return sections
}

func listSection(title, marker string, items []string) reportSection {
	s := reportSection{title: title}
	for _, item := range items {
		s.lines = append(s.lines, [2]string{marker, item})
	}
	return s
}

// statusLines maps a doctor status to its closing line.
var statusLines = map[string]string{
	"ready":    "Status: Ready to render",
	"warnings": "Status: Ready with warnings",
	"errors":   "Status: Not ready (see errors above)",
}

// printDoctorResult writes the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprint(w, "mdmath doctor\n\n")
	for _, section := range doctorSections(r) {
		fmt.Fprintln(w, section.title)
		for _, line := range section.lines {
			fmt.Fprintf(w, "  %s %s\n", line[0], line[1])
		}
		fmt.Fprintln(w)
	}
	if status, ok := statusLines[r.Status]; ok {
		fmt.Fprintln(w, status)
	}
}
