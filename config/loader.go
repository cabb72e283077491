// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoaderOptions configures Load.
type LoaderOptions struct {
	// ConfigDir is the directory to look for <environment>.yaml and
	// config.yaml in (default: "config").
	ConfigDir string
	// Environment overrides automatic CHAINNOTE_ENV detection.
	Environment string
	// DotEnvPath, if non-empty, is loaded into the process environment
	// before file config is read, so ${VAR}-free CHAINNOTE_* overrides
	// can come from a local .env file during development.
	DotEnvPath string
}

// DefaultLoaderOptions returns the default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{ConfigDir: "config", DotEnvPath: ".env"}
}

// Load loads configuration from ConfigDir, applying environment variable
// overrides on top (highest priority).
func Load(opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.DotEnvPath != "" {
		if err := LoadDotEnv(options.DotEnvPath); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	env := options.Environment
	if env == "" {
		env = GetEnvironment()
	}

	cfg, err := loadFirstExisting(
		filepath.Join(options.ConfigDir, env+".yaml"),
		filepath.Join(options.ConfigDir, "config.yaml"),
	)
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "" {
		cfg.Environment = env
	}
	setDefaults(cfg)
	applyEnvironmentOverrides(cfg)
	return cfg, nil
}

func loadFirstExisting(paths ...string) (*Config, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		cfg := &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		return cfg, nil
	}
	return &Config{}, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad(opts ...LoaderOptions) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
