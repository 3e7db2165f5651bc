package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdmath/internal/config"
)

// envPrefix marks the environment variables read by mdmath.
const envPrefix = "MDMATH_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDMATH_CONFIG: config file name or path
	Engine     string        // MDMATH_ENGINE: render engine
	Pandoc     string        // MDMATH_PANDOC: pandoc executable
	Timeout    time.Duration // MDMATH_TIMEOUT: timeout per engine run
	Workers    int           // MDMATH_WORKERS: parallel workers
}

// knownEnvVars lists valid MDMATH_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDMATH_CONFIG":  true,
	"MDMATH_ENGINE":  true,
	"MDMATH_PANDOC":  true,
	"MDMATH_TIMEOUT": true,
	"MDMATH_WORKERS": true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid timeout or worker values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MDMATH_CONFIG"),
		Engine:     getenv("MDMATH_ENGINE"),
		Pandoc:     getenv("MDMATH_PANDOC"),
	}

	if timeout := getenv("MDMATH_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MDMATH_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDMATH_* variables.
// Helps catch typos like MDMATH_ENGIN.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable overrides the config file; CLI flags are applied later,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Pandoc != "" {
		cfg.Render.Pandoc = env.Pandoc
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
}
