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
	"github.com/go-chi/chi/v5/middleware"

	"factorstd/internal/config"
	apperrors "factorstd/internal/errors"
	"factorstd/internal/infrastructure"
	customMiddleware "factorstd/internal/middleware"
	"factorstd/internal/services"
	"factorstd/internal/standardize"
	handlers "factorstd/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config             *config.Config
	Router             *chi.Mux
	Server             *http.Server
	Logger             *slog.Logger
	Telemetry          *infrastructure.Telemetry
	StandardizeService *services.StandardizeService
	HealthService      *services.HealthService
}

// NewApplication wires the services, router and HTTP server
func NewApplication(cfg *config.Config, logger *slog.Logger, telemetry *infrastructure.Telemetry) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("application requires a configuration", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		var err error
		telemetry, err = infrastructure.InitializeTelemetry(config.TelemetryConfig{ServiceName: config.AppName}, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.StandardizeService = services.NewStandardizeService(
		a.Config.Standardize.Workers,
		a.Logger,
		standardize.WithMeterProvider(a.Telemetry.MeterProvider),
		standardize.WithTracerProvider(a.Telemetry.TracerProvider),
	)
	a.HealthService = services.NewHealthService(config.AppVersion, a.Logger)
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.Telemetry, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errorHandler.Recoverer)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Handle("/metrics", a.Telemetry.MetricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}
		r.Use(customMiddleware.BodyLimit(a.Config.Server.MaxBodyBytes))
		r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))

		handlers.NewHealthHandler(a.HealthService, a.Logger).RegisterRoutes(r)
		handlers.NewStandardizeHandler(
			a.StandardizeService,
			customMiddleware.NewValidator(),
			a.Logger,
			errorHandler,
		).RegisterRoutes(r)
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts serving on the configured port. A listener failure cancels
// the application context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level),
		slog.Int("workers", a.Config.Standardize.Workers))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.shutdownTimeout())
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run serves until ctx is cancelled, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// ctx is already done, shut down on a fresh one
	return a.Stop(context.Background())
}

func (a *Application) shutdownTimeout() time.Duration {
	if a.Config.Server.ShutdownTimeout > 0 {
		return a.Config.Server.ShutdownTimeout
	}
	return 30 * time.Second
}
