package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chainnote/e2e/chainclient"
	"github.com/chainnote/e2e/identitystore"
)

// ErrPingNotConfigured is returned by PSKStoreHealthCheck when no ping
// function was supplied.
var ErrPingNotConfigured = errors.New("health: psk store ping not configured")

// PSKStoreHealthCheck builds a HealthCheck that pings a PSK storage
// backend (e.g. pskmanager/store.Store.ListContacts, used purely as a
// connectivity probe).
func PSKStoreHealthCheck(ping func(context.Context) error) HealthCheck {
	return func(ctx context.Context) error {
		if ping == nil {
			return ErrPingNotConfigured
		}
		return ping(ctx)
	}
}

// ChainClientHealthCheck probes client's reachability by fetching
// transaction parameters, the cheapest round trip every ChainClient
// supports.
func ChainClientHealthCheck(client chainclient.ChainClient) HealthCheck {
	return BlockchainHealthCheck(func(ctx context.Context) error {
		if client == nil {
			return errors.New("health: chain client not configured")
		}
		_, err := client.FetchTxParams(ctx)
		return err
	})
}

// KeyStoreDirHealthCheck probes that store's identity directory is
// still readable (e.g. not on an unmounted volume).
func KeyStoreDirHealthCheck(store *identitystore.Store) HealthCheck {
	return KeyStoreHealthCheck(func() error {
		if store == nil {
			return errors.New("health: identity store not configured")
		}
		_, err := store.List()
		return err
	})
}

// Handler returns an HTTP handler serving h's overall system health as
// JSON at the path it's mounted on, with a 503 status whenever the overall
// status is not healthy (degraded included).
func Handler(h *HealthChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sys := h.GetSystemHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if sys.Status != StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(sys)
	})
}
