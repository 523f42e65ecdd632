package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the Prometheus endpoint and liveness probes for the
// supervisor itself. It is strictly an observer: the supervised service's
// readiness lives at its own URL, and nothing here gates the startup
// sequence.
type Server struct {
	addr   string
	server *http.Server
	logger *slog.Logger
}

// NewServer builds the server; it does not listen until Start.
func NewServer(addr string, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		logger: logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      newMux(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Liveness of the supervisor process, nothing more. Both spellings so
	// that kubelet-style and plain probes find one they like.
	alive := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	}
	mux.HandleFunc("/health", alive)
	mux.HandleFunc("/healthz", alive)
	mux.HandleFunc("/readyz", alive)

	return mux
}

// Start begins serving in a goroutine and returns immediately. A listen
// failure is logged rather than returned: metrics are ancillary here and
// must never take the supervised service down with them.
func (s *Server) Start() error {
	s.logger.Info("metrics_server_starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics_server_error", "error", err)
		}
	}()

	return nil
}

// Shutdown drains in-flight scrapes and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("metrics_server_shutting_down")
	return s.server.Shutdown(ctx)
}

// Handler exposes the route table so tests can drive it through httptest
// without binding a port.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
