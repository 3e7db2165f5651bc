// Package config loads the YAML project file describing which folders to
// convert and how documents are rendered.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrInvalidValue      = errors.New("invalid config value")
	ErrNoProjectFolders  = errors.New("no project folders found")
	ErrTooManyRenderArgs = errors.New("too many render arguments")
)

// DefaultName is the config name looked up when none is given.
const DefaultName = "mdmath"

// Render engines.
const (
	EnginePandoc = "pandoc"
	EngineChrome = "chrome"
)

// Engines lists the accepted render engine names.
var Engines = []string{EnginePandoc, EngineChrome}

// Field limits.
const (
	MaxPathLength      = 4096
	MaxDirectionLength = 20
	MaxExtensionLength = 20
	MaxRenderArgs      = 64
	MaxRenderArgLength = 1024
)

// Config holds the project and render settings.
type Config struct {
	Direction      string         `yaml:"direction"`      // "usual" or "github" (default: "usual")
	Folders        []FolderConfig `yaml:"folders"`        // Project folders for batch conversion
	IgnoredFolders []string       `yaml:"ignoredFolders"` // Directory names pruned during traversal
	Extensions     []string       `yaml:"extensions"`     // File suffixes to convert (default: [".md"])
	Workers        int            `yaml:"workers"`        // 0 = auto
	Render         RenderConfig   `yaml:"render"`

	// Dir is the directory of the loaded file. Relative folders resolve
	// against it. Empty means the working directory.
	Dir string `yaml:"-"`
}

// FolderConfig is one project folder.
type FolderConfig struct {
	Path string `yaml:"path"`
}

// RenderConfig defines render options.
type RenderConfig struct {
	Engine    string   `yaml:"engine"`    // "pandoc" or "chrome" (default: "pandoc")
	Pandoc    string   `yaml:"pandoc"`    // pandoc binary (default: looked up on PATH)
	Args      []string `yaml:"args"`      // Extra pandoc arguments, e.g. ["--pdf-engine=xelatex"]
	OutputDir string   `yaml:"outputDir"` // Empty = temp dir, artifacts removed on exit
	Timeout   string   `yaml:"timeout"`   // Go duration, e.g. "90s" (empty = CLI default)
	NoOpen    bool     `yaml:"noOpen"`    // Do not open the artifact after rendering
}

// Validate checks values and field lengths.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	if err := validateFieldLength("direction", c.Direction, MaxDirectionLength); err != nil {
		return err
	}
	for i, f := range c.Folders {
		if err := validateFieldLength(fmt.Sprintf("folders[%d].path", i), f.Path, MaxPathLength); err != nil {
			return err
		}
	}
	for i, name := range c.IgnoredFolders {
		if err := validateFieldLength(fmt.Sprintf("ignoredFolders[%d]", i), name, MaxPathLength); err != nil {
			return err
		}
	}
	for i, ext := range c.Extensions {
		if err := validateFieldLength(fmt.Sprintf("extensions[%d]", i), ext, MaxExtensionLength); err != nil {
			return err
		}
		if ext == "" {
			return fmt.Errorf("%w: extensions[%d]: empty", ErrInvalidValue, i)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must be >= 0, got %d", ErrInvalidValue, c.Workers)
	}
	return c.Render.validate()
}

func (r *RenderConfig) validate() error {
	if r.Engine != "" && !slices.Contains(Engines, r.Engine) {
		return fmt.Errorf("%w: render.engine: %q (available: %s)", ErrInvalidValue, r.Engine, strings.Join(Engines, ", "))
	}
	if err := validateFieldLength("render.pandoc", r.Pandoc, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.outputDir", r.OutputDir, MaxPathLength); err != nil {
		return err
	}
	if len(r.Args) > MaxRenderArgs {
		return fmt.Errorf("%w: %d (max %d)", ErrTooManyRenderArgs, len(r.Args), MaxRenderArgs)
	}
	for i, arg := range r.Args {
		if err := validateFieldLength(fmt.Sprintf("render.args[%d]", i), arg, MaxRenderArgLength); err != nil {
			return err
		}
	}
	if _, err := r.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. An empty value returns 0.
func (r *RenderConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: render.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: render.timeout: must be positive, got %s", ErrInvalidValue, r.Timeout)
	}
	return d, nil
}

// ResolveFolders returns the project folders as clean paths, relative
// entries joined to Dir. Entries with an empty path are skipped.
// Returns ErrNoProjectFolders when nothing remains.
func (c *Config) ResolveFolders() ([]string, error) {
	var folders []string
	for _, f := range c.Folders {
		if f.Path == "" {
			continue
		}
		p := f.Path
		if !filepath.IsAbs(p) && c.Dir != "" {
			p = filepath.Join(c.Dir, p)
		}
		folders = append(folders, filepath.Clean(p))
	}
	if len(folders) == 0 {
		return nil, ErrNoProjectFolders
	}
	return folders, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is found:
// convert to the usual dialect, no project folders, pandoc engine.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".md"},
		Render:     RenderConfig{Engine: EnginePandoc},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if abs, err := filepath.Abs(filepath.Dir(configPath)); err == nil {
		cfg.Dir = abs
	} else {
		cfg.Dir = filepath.Dir(configPath)
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup order:
// current directory, then the user config directory (go-mdmath/).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-mdmath", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
