package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"disciplinedash/internal/config"
	apierrors "disciplinedash/internal/errors"
	"disciplinedash/internal/files"
	"disciplinedash/internal/infrastructure"
	customMiddleware "disciplinedash/internal/middleware"
	"disciplinedash/internal/presenter"
	"disciplinedash/internal/services"
	handlers "disciplinedash/internal/transport/http"
	ws "disciplinedash/internal/websocket"
	"disciplinedash/pkg/contracts"
)

// AppName is reported in the startup log
const AppName = "Discipline Metrics Dashboard"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	WebSocketHub     *ws.Hub
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
}

// NewApplication wires every component from cfg. Nothing runs until Run.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("source", cfg.Data.Source))

	// A private registry keeps the exporter off the global default so more
	// than one application can live in a process.
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.Registry = registry

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	app.initializeServices()

	if err := app.setupRouter(); err != nil {
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	app.createServer()

	return app, nil
}

// initializeServices creates the hub first so the dashboard service can
// notify it from the very first load
func (a *Application) initializeServices() {
	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
	a.DashboardService = services.NewDashboardService(a.Config, a.WebSocketHub, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(a.DashboardService, a.WebSocketHub, a.Logger)
}

// setupRouter builds the middleware chain and mounts every route
func (a *Application) setupRouter() error {
	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return err
	}

	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfigFrom(a.Config.Security, a.Logger)))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiterFrom(a.Config.Security.RateLimit, a.Logger).Handler)
	}

	// Set before mounting so sub-routers inherit them
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.DashboardService, a.Config.WebSocket,
		a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Get("/ws", wsHandler.ServeHTTP)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

// setupAPIRoutes mounts the JSON, chart and export routes under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	renderer := presenter.NewRenderer(presenter.ConfigFrom(a.Config.Presenter, a.Config.Analysis), a.Logger)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, renderer, a.Metrics, a.Logger, a.ErrorHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(5, "application/json", "application/problem+json", "image/svg+xml", "text/csv"))

		r.Mount("/api/health", healthHandler.Routes())
		r.Get("/api/version", healthHandler.Version)
		r.Mount("/api", dashboardHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run listens on the configured address and blocks until ctx is cancelled
// or a component fails
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the server on ln together with the hub, the startup load and
// the source watcher. Cancelling ctx shuts everything down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.WebSocketHub.Run(gctx)
	})

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.loadAtStartup(gctx)
		return nil
	})

	if a.Config.Data.Watch {
		g.Go(func() error {
			a.watchSource(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(gctx))
	})

	return g.Wait()
}

// loadAtStartup performs the first load. A failure leaves the service in the
// failed state; the server keeps running and answers views with 503.
func (a *Application) loadAtStartup(ctx context.Context) {
	if _, err := a.DashboardService.Load(ctx, services.ReasonStartup); err != nil {
		a.Logger.WarnContext(ctx, "Startup load failed, serving without data",
			slog.String("error", err.Error()))
	}
}

// watchSource reloads the dataset whenever the source changes on disk
func (a *Application) watchSource(ctx context.Context) {
	watcher := files.NewWatcher(a.Config.Data.Source, a.Config.Data.WatchDebounce, a.Logger)
	err := watcher.Run(ctx, func() {
		reloadCtx := infrastructure.WithNewTraceID(ctx)
		if _, err := a.DashboardService.Reload(reloadCtx, services.ReasonFileChange); err != nil {
			a.Logger.WarnContext(reloadCtx, "Reload after file change failed",
				slog.String("error", err.Error()))
		}
	})
	if err != nil && ctx.Err() == nil {
		a.Logger.WarnContext(ctx, "Source watcher stopped, changes need a manual reload",
			slog.String("error", err.Error()))
	}
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("uptime", time.Since(a.HealthService.StartTime())))
	return nil
}
