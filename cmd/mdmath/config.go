package main

import (
	"errors"

	"github.com/alnah/go-mdmath/internal/config"
)

// loadConfig resolves the configuration for a command.
// An explicit name or path (flag, then MDMATH_CONFIG) must exist. Otherwise
// the default name is looked up and its absence is not an error.
// Environment overrides are applied to the result.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	var cfg *config.Config
	var err error
	if name != "" {
		cfg, err = config.LoadConfig(name)
	} else {
		cfg, err = config.LoadConfig(config.DefaultName)
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = config.DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}
