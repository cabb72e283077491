package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainnote/e2e/chainclient"
	"github.com/chainnote/e2e/identitystore"
)

func TestHandler_HealthyReturns200(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("psk_store", func(ctx context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	Handler(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestHandler_UnhealthyReturns503(t *testing.T) {
	h := NewHealthChecker(time.Second)
	h.RegisterCheck("psk_store", func(ctx context.Context) error { return errors.New("down") })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	Handler(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubChainClient struct {
	fetchErr error
}

func (s *stubChainClient) FetchTxParams(ctx context.Context) (*chainclient.TxParams, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &chainclient.TxParams{}, nil
}

func (s *stubChainClient) SubmitPayment(ctx context.Context, to string, amount uint64, noteBytes []byte, params *chainclient.TxParams) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubChainClient) WaitForConfirmation(ctx context.Context, txID string) (bool, error) {
	return false, nil
}

func TestChainClientHealthCheck_ReportsFetchError(t *testing.T) {
	check := ChainClientHealthCheck(&stubChainClient{fetchErr: errors.New("rpc down")})
	err := check(context.Background())
	assert.EqualError(t, err, "rpc down")
}

func TestChainClientHealthCheck_HealthyWhenFetchSucceeds(t *testing.T) {
	check := ChainClientHealthCheck(&stubChainClient{})
	assert.NoError(t, check(context.Background()))
}

func TestChainClientHealthCheck_NilClient(t *testing.T) {
	check := ChainClientHealthCheck(nil)
	assert.Error(t, check(context.Background()))
}

func TestKeyStoreDirHealthCheck_HealthyWhenDirReadable(t *testing.T) {
	store, err := identitystore.New(t.TempDir())
	require.NoError(t, err)

	check := KeyStoreDirHealthCheck(store)
	assert.NoError(t, check(context.Background()))
}

func TestKeyStoreDirHealthCheck_NilStore(t *testing.T) {
	check := KeyStoreDirHealthCheck(nil)
	assert.Error(t, check(context.Background()))
}
