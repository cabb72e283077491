package metrics

import "net/http"

// StartServer starts a standalone metrics HTTP server serving Registry at
// /metrics. It blocks until the server stops or errors, so callers
// typically run it in its own goroutine.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
