// Package rest exposes the local repository, cohort view, and archive
// exporter over HTTP. Every operation returns the same JSON envelope the
// facade produces; the HTTP status mirrors the envelope's related status
// code.
package rest

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"metarepo/internal/archive"
	"metarepo/internal/cohort"
	"metarepo/internal/logging"
	"metarepo/internal/repo"
)

// Server is the HTTP API server. It does not start listening until Run
// is called.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// New wires the router and returns a server bound to addr. registry may
// be nil when Prometheus metrics are not configured.
func New(addr string, local *repo.LocalRepository, cohorts *cohort.Manager, exporter *archive.Exporter, registry *prometheus.Registry) *Server {
	logger := logging.GetLogger("rest")
	h := &handlers{repo: local, cohorts: cohorts, exporter: exporter, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		h.mountTypes(r)
		h.mountInstances(r)
		h.mountCohorts(r)
		h.mountArchives(r)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Run blocks serving HTTP until the listener closes.
func (s *Server) Run() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("api server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
