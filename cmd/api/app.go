package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/techhbuddy/survey-hub/internal/analytics"
	"github.com/techhbuddy/survey-hub/internal/api/handlers"
	"github.com/techhbuddy/survey-hub/internal/api/middleware"
	"github.com/techhbuddy/survey-hub/internal/config"
	"github.com/techhbuddy/survey-hub/internal/observability"
	"github.com/techhbuddy/survey-hub/internal/repository"
	"github.com/techhbuddy/survey-hub/internal/service"
	"github.com/techhbuddy/survey-hub/internal/workers"
	"github.com/techhbuddy/survey-hub/pkg/cache"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg           *config.Config
	server        *http.Server
	river         *river.Client[pgx.Tx]
	meterProvider observability.MeterProviderShutdown
}

// NewApp builds and wires all components. It does not start the HTTP server or River;
// call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	meterProvider, metricsHandler, metrics, err := observability.NewMeterProvider(
		context.Background(), observability.MeterProviderConfig{},
	)
	if err != nil {
		return nil, fmt.Errorf("create meter provider: %w", err)
	}

	// Install TraceContextHandler so request_id (and trace_id/span_id when a span
	// is active) appear in every log record.
	defaultHandler := slog.Default().Handler()
	slog.SetDefault(slog.New(observability.NewTraceContextHandler(defaultHandler)))

	surveysRepo := repository.NewSurveysRepository(db)
	responsesRepo := repository.NewResponsesRepository(db)
	snapshotsRepo := repository.NewReportSnapshotsRepository(db)

	reportCache, err := cache.NewReadThrough[*analytics.Report](cfg.ReportCacheSize)
	if err != nil {
		shutdownMeterProvider(meterProvider)

		return nil, fmt.Errorf("create report cache: %w", err)
	}

	analyticsService := service.NewAnalyticsService(surveysRepo, responsesRepo, snapshotsRepo, reportCache, metrics)
	surveysService := service.NewSurveysService(surveysRepo, snapshotsRepo, analyticsService)

	refreshWorker := workers.NewReportRefreshWorker(analyticsService, cfg.ReportRefreshRateLimit, metrics)
	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, refreshWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.ReportRefreshMaxConcurrent},
		},
		Workers:     riverWorkers,
		MaxAttempts: cfg.ReportRefreshMaxAttempts,
	})
	if err != nil {
		shutdownMeterProvider(meterProvider)

		return nil, fmt.Errorf("create River client: %w", err)
	}

	responsesService := service.NewResponsesService(responsesRepo, surveysRepo, riverClient, analyticsService, metrics)

	surveysHandler := handlers.NewSurveysHandler(surveysService)
	responsesHandler := handlers.NewResponsesHandler(responsesService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	healthHandler := handlers.NewHealthHandler()

	server := newHTTPServer(cfg, healthHandler, surveysHandler, responsesHandler, analyticsHandler, metricsHandler, metrics)

	return &App{
		cfg:           cfg,
		server:        server,
		river:         riverClient,
		meterProvider: meterProvider,
	}, nil
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health and /metrics,
// API key on /v1/). Handler chain: RequestID -> Metrics -> Logging -> mux, with
// Auth and MaxBody applied only to the /v1/ subtree.
func newHTTPServer(
	cfg *config.Config,
	health *handlers.HealthHandler,
	surveys *handlers.SurveysHandler,
	responses *handlers.ResponsesHandler,
	analyticsH *handlers.AnalyticsHandler,
	metricsHandler http.Handler,
	metrics observability.HubMetrics,
) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", health.Check)
	public.Handle("GET /metrics", metricsHandler)

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/surveys", surveys.Create)
	protected.HandleFunc("GET /v1/surveys", surveys.List)
	protected.HandleFunc("GET /v1/surveys/{id}", surveys.Get)
	protected.HandleFunc("DELETE /v1/surveys/{id}", surveys.Delete)

	protected.HandleFunc("POST /v1/surveys/{id}/responses", responses.Create)
	protected.HandleFunc("GET /v1/surveys/{id}/responses", responses.List)

	protected.HandleFunc("GET /v1/surveys/{id}/report", analyticsH.GetReport)
	protected.HandleFunc("GET /v1/surveys/{id}/report/snapshot", analyticsH.GetSnapshot)
	protected.HandleFunc("GET /v1/surveys/{id}/funnel", analyticsH.GetFunnel)

	var protectedHandler http.Handler = protected
	protectedHandler = middleware.MaxBody(cfg.MaxRequestBodyBytes, metrics)(protectedHandler)
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedHandler)
	mux.Handle("/", public)

	handler := middleware.Logging(mux)
	handler = middleware.Metrics(metrics)(handler)
	handler = middleware.RequestID(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 15 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and River, then blocks until ctx is cancelled
// (e.g. signal) or a component fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	riverCtx, cancelRiver := context.WithCancel(ctx)
	defer cancelRiver()

	go func() {
		if err := a.river.Start(riverCtx); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case runErr <- fmt.Errorf("river: %w", err):
			default:
			}
		}
	}()

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		cancelRiver()

		return err
	case <-ctx.Done():
		cancelRiver()

		return nil
	}
}

// Shutdown stops the server, then River, then the meter provider. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) (err error) {
	defer func() {
		if shutdownErr := a.meterProvider.Shutdown(ctx); shutdownErr != nil {
			if err == nil {
				err = shutdownErr
			} else {
				slog.Error("shutdown meter provider", "error", shutdownErr)
			}
		}
	}()

	if err = a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if stopErr := a.river.Stop(ctx); stopErr != nil {
			slog.Error("river stop during server shutdown", "error", stopErr)
		}

		return fmt.Errorf("server shutdown: %w", err)
	}

	if err = a.river.Stop(ctx); err != nil {
		return fmt.Errorf("river stop: %w", err)
	}

	return nil
}

// shutdownMeterProvider shuts down the meter provider during failed startup, logging any error.
func shutdownMeterProvider(mp observability.MeterProviderShutdown) {
	if err := mp.Shutdown(context.Background()); err != nil {
		slog.Error("shutdown meter provider after startup error", "error", err)
	}
}
