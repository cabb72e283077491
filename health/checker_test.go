package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_CheckHealthy(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("psk_store", func(ctx context.Context) error { return nil })

	result, err := h.Check(context.Background(), "psk_store")
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, result.Status)
}

func TestHealthChecker_CheckUnhealthy(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("psk_store", func(ctx context.Context) error { return errors.New("connection refused") })

	result, err := h.Check(context.Background(), "psk_store")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "connection refused")
}

func TestHealthChecker_CheckUnknown(t *testing.T) {
	h := NewHealthChecker(time.Second)
	_, err := h.Check(context.Background(), "nope")
	assert.Error(t, err)
}

func TestHealthChecker_GetOverallStatus(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("ok", func(ctx context.Context) error { return nil })
	h.RegisterCheck("bad", func(ctx context.Context) error { return errors.New("down") })

	assert.Equal(t, StatusUnhealthy, h.GetOverallStatus(context.Background()))
}

func TestPSKStoreHealthCheck_NotConfigured(t *testing.T) {
	check := PSKStoreHealthCheck(nil)
	assert.ErrorIs(t, check(context.Background()), ErrPingNotConfigured)
}

func TestPSKStoreHealthCheck_DelegatesToPing(t *testing.T) {
	called := false
	check := PSKStoreHealthCheck(func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, check(context.Background()))
	assert.True(t, called)
}
