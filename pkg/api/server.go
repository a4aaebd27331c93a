// Package api serves action registries over a REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))
		}

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/tables", s.metrics.InstrumentHandler("GET", "/api/v1/tables", s.handleListTables))
		r.Post("/tables", s.metrics.InstrumentHandler("POST", "/api/v1/tables", s.handleCreateTable))
		r.Delete("/tables/{table}", s.metrics.InstrumentHandler("DELETE", "/api/v1/tables/{table}", s.handleDropTable))

		r.Get("/tables/{table}/actions",
			s.metrics.InstrumentHandler("GET", "/api/v1/tables/{table}/actions", s.handleListActions))
		r.Post("/tables/{table}/actions",
			s.metrics.InstrumentHandler("POST", "/api/v1/tables/{table}/actions", s.handleCreateAction))
		r.Get("/tables/{table}/actions/{name}",
			s.metrics.InstrumentHandler("GET", "/api/v1/tables/{table}/actions/{name}", s.handleGetAction))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully and releases every open table.
func StartServer(ctx context.Context, tables TableStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) error {
	server := NewServer(tables, config, metrics, logger)
	defer server.Close()

	addr := net.JoinHostPort(config.Bind, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("starting skyactions REST API server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	server.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
