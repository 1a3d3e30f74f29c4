package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"notesqa/features/ask"
	"notesqa/features/health"
	"notesqa/internal/config"
	"notesqa/internal/metrics"
	"notesqa/internal/middleware"
)

type App struct {
	Handler http.Handler
	Metrics *metrics.Collector
	port    int
}

func New(cfg *config.Config, deps *Dependencies) (*App, error) {
	if deps == nil || deps.Corpus == nil || deps.Generator == nil {
		return nil, fmt.Errorf("app: corpus and generator are required")
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("notesqa")
	}

	opts := ask.Options{
		Persona:  cfg.Persona,
		Provider: cfg.ProviderName(),
	}
	if collector != nil {
		opts.Metrics = collector
	}
	if deps.QueryLog != nil {
		opts.QueryLog = deps.QueryLog
	}

	askHandler := ask.NewHandler(deps.Corpus, deps.Generator, opts)
	healthHandler := health.NewHandler(deps.Corpus, cfg.ModelName, cfg.ProviderName())

	route := func(pattern string, h http.HandlerFunc) http.Handler {
		next := chimiddleware.Recoverer(h)
		if collector != nil {
			next = collector.Middleware(pattern, next)
		}
		return middleware.CorrelationID(next)
	}

	// Routes
	mux := http.NewServeMux()
	mux.Handle("POST /ask", route("/ask", askHandler.Ask))
	mux.Handle("GET /test", route("/test", healthHandler.Check))
	if collector != nil {
		mux.Handle("GET /metrics", collector.Handler())
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.CorrelationHeader},
		ExposedHeaders: []string{middleware.CorrelationHeader},
		MaxAge:         300,
	})

	return &App{
		Handler: chimiddleware.Recoverer(corsHandler(mux)),
		Metrics: collector,
		port:    cfg.Port,
	}, nil
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server listening", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
