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

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads chainnote's runtime configuration: which chain to
// scan, where key material and PSK state live, and how logging/metrics/
// health are exposed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Blockchain  *BlockchainConfig `yaml:"blockchain" json:"blockchain"`
	KeyStore    *KeyStoreConfig `yaml:"keystore" json:"keystore"`
	PSK         *PSKConfig      `yaml:"psk" json:"psk"`
	Logging     *LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig  `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig   `yaml:"health" json:"health"`
}

// BlockchainConfig describes the chain the client scans for note-carried
// envelopes and the address this identity publishes transactions from.
type BlockchainConfig struct {
	Chain          string        `yaml:"chain" json:"chain"` // ethereum, solana, secp256k1-generic
	RPC            string        `yaml:"rpc" json:"rpc"`
	Address        string        `yaml:"address" json:"address"`
	SearchDepth    int           `yaml:"search_depth" json:"search_depth"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// KeyStoreConfig describes where the agreement/signing key pair is kept.
type KeyStoreConfig struct {
	Type          string `yaml:"type" json:"type"` // file, memory
	Directory     string `yaml:"directory" json:"directory"`
	PassphraseEnv string `yaml:"passphrase_env" json:"passphrase_env"`
}

// PSKConfig selects the pskmanager.Store backend and its connection
// parameters.
type PSKConfig struct {
	Backend    string `yaml:"backend" json:"backend"` // memory, file, postgres
	Directory  string `yaml:"directory" json:"directory"`
	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`
}

// LoggingConfig configures internal/logger's default logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// MetricsConfig configures the Prometheus /metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig configures the /healthz server.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile reads and parses a YAML config file, applying defaults
// afterward.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg as YAML to path.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Blockchain == nil {
		cfg.Blockchain = &BlockchainConfig{}
	}
	if cfg.Blockchain.SearchDepth == 0 {
		cfg.Blockchain.SearchDepth = 500
	}
	if cfg.Blockchain.RequestTimeout == 0 {
		cfg.Blockchain.RequestTimeout = 30 * time.Second
	}

	if cfg.KeyStore == nil {
		cfg.KeyStore = &KeyStoreConfig{}
	}
	if cfg.KeyStore.Type == "" {
		cfg.KeyStore.Type = "file"
	}
	if cfg.KeyStore.Directory == "" {
		cfg.KeyStore.Directory = ".chainnote/keys"
	}

	if cfg.PSK == nil {
		cfg.PSK = &PSKConfig{}
	}
	if cfg.PSK.Backend == "" {
		cfg.PSK.Backend = "file"
	}
	if cfg.PSK.Directory == "" {
		cfg.PSK.Directory = ".chainnote/psk"
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Health == nil {
		cfg.Health = &HealthConfig{}
	}
	if cfg.Health.Addr == "" {
		cfg.Health.Addr = ":9091"
	}
	if cfg.Health.Path == "" {
		cfg.Health.Path = "/healthz"
	}
}
