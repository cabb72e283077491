// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("CHAINNOTE_BLOCKCHAIN_RPC", "http://override:8545")
	t.Setenv("CHAINNOTE_LOG_LEVEL", "debug")
	t.Setenv("CHAINNOTE_METRICS_ENABLED", "true")

	cfg := &Config{
		Blockchain: &BlockchainConfig{RPC: "http://original:8545"},
		Logging:    &LoggingConfig{Level: "info"},
		Metrics:    &MetricsConfig{Enabled: false},
	}
	applyEnvironmentOverrides(cfg)

	assert.Equal(t, "http://override:8545", cfg.Blockchain.RPC)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestGetEnvironment_DefaultsToDevelopment(t *testing.T) {
	t.Setenv("CHAINNOTE_ENV", "")
	assert.Equal(t, "development", GetEnvironment())
}

func TestGetEnvironment_ReadsOverride(t *testing.T) {
	t.Setenv("CHAINNOTE_ENV", "Production")
	assert.Equal(t, "production", GetEnvironment())
	assert.True(t, IsProduction())
}
