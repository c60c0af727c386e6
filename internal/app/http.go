package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routes builds the HTTP mux: health probes, Prometheus metrics and the
// widget websocket endpoint.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /ws", a.gateway)

	return withRequestLog(a.log, mux)
}
