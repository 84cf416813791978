package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ssargent/stakelist/pkg/storage"
)

const metricsRefreshInterval = 30 * time.Second

// Server holds the API server state
type Server struct {
	ledger    ILedger
	snapshots storage.SnapshotStore
	config    ServerConfig
	metrics   *Metrics
	registry  *prometheus.Registry
	logger    zerolog.Logger
}

// NewServer creates a new API server. snapshots may be nil, in which case the
// snapshot routes answer 503.
func NewServer(ledger ILedger, snapshots storage.SnapshotStore, config ServerConfig, logger zerolog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return &Server{
		ledger:    ledger,
		snapshots: snapshots,
		config:    config,
		metrics:   NewMetrics(registry),
		registry:  registry,
		logger:    logger,
	}
}

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/validators", s.metrics.InstrumentHandler("GET", "/api/v1/validators", s.handleListValidators))
		r.Post("/validators", s.metrics.InstrumentHandler("POST", "/api/v1/validators", s.handleAppend))
		r.Get("/validators/{index}", s.metrics.InstrumentHandler("GET", "/api/v1/validators/{index}", s.handleGetValidator))

		r.Get("/stats", s.metrics.InstrumentHandler("GET", "/api/v1/stats", s.handleStats))
		r.Get("/verify", s.metrics.InstrumentHandler("GET", "/api/v1/verify", s.handleVerify))
		r.Get("/raw", s.metrics.InstrumentHandler("GET", "/api/v1/raw", s.handleRaw))
		r.Post("/compact", s.metrics.InstrumentHandler("POST", "/api/v1/compact", s.handleCompact))

		r.Get("/snapshots", s.metrics.InstrumentHandler("GET", "/api/v1/snapshots", s.handleListSnapshots))
		r.Post("/snapshots", s.metrics.InstrumentHandler("POST", "/api/v1/snapshots", s.handleCreateSnapshot))
	})

	return r
}

// Serve listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.startMetricsUpdater(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting stakelist REST API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info().Msg("shutting down REST API server")
	return srv.Shutdown(shutdownCtx)
}

// startMetricsUpdater refreshes ledger gauges until ctx is done
func (s *Server) startMetricsUpdater(ctx context.Context) {
	s.metrics.UpdateLedgerStats(s.ledger.Stats())

	ticker := time.NewTicker(metricsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metrics.UpdateLedgerStats(s.ledger.Stats())
		}
	}
}
