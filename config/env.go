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
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads key=value pairs from path into the process
// environment for local development, silently doing nothing if path
// doesn't exist.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// applyEnvironmentOverrides overrides cfg with CHAINNOTE_* environment
// variables, highest priority over file-loaded values.
func applyEnvironmentOverrides(cfg *Config) {
	if rpc := os.Getenv("CHAINNOTE_BLOCKCHAIN_RPC"); rpc != "" && cfg.Blockchain != nil {
		cfg.Blockchain.RPC = rpc
	}
	if addr := os.Getenv("CHAINNOTE_BLOCKCHAIN_ADDRESS"); addr != "" && cfg.Blockchain != nil {
		cfg.Blockchain.Address = addr
	}
	if chain := os.Getenv("CHAINNOTE_BLOCKCHAIN_CHAIN"); chain != "" && cfg.Blockchain != nil {
		cfg.Blockchain.Chain = chain
	}

	if ksDir := os.Getenv("CHAINNOTE_KEYSTORE_DIR"); ksDir != "" && cfg.KeyStore != nil {
		cfg.KeyStore.Directory = ksDir
	}

	if pskBackend := os.Getenv("CHAINNOTE_PSK_BACKEND"); pskBackend != "" && cfg.PSK != nil {
		cfg.PSK.Backend = pskBackend
	}
	if pskDSN := os.Getenv("CHAINNOTE_PSK_POSTGRES_DSN"); pskDSN != "" && cfg.PSK != nil {
		cfg.PSK.PostgresDSN = pskDSN
	}

	if logLevel := os.Getenv("CHAINNOTE_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}

	if v := os.Getenv("CHAINNOTE_METRICS_ENABLED"); v != "" && cfg.Metrics != nil {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("CHAINNOTE_HEALTH_ENABLED"); v != "" && cfg.Health != nil {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Health.Enabled = enabled
		}
	}
}

// GetEnvironment returns the current environment from CHAINNOTE_ENV, or
// "development" if unset.
func GetEnvironment() string {
	env := os.Getenv("CHAINNOTE_ENV")
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction reports whether the current environment is production.
func IsProduction() bool {
	return GetEnvironment() == "production"
}
