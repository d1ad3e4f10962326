package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carepoint/intake/internal/config"
	"github.com/carepoint/intake/internal/domain/appointment"
	"github.com/carepoint/intake/internal/domain/intake"
	"github.com/carepoint/intake/internal/domain/patient"
	"github.com/carepoint/intake/internal/domain/provider"
	"github.com/carepoint/intake/internal/platform/analysis"
	"github.com/carepoint/intake/internal/platform/cache"
	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/middleware"
	"github.com/carepoint/intake/internal/platform/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).With().Timestamp().Str("service", "intake-server").Logger()
}

// loadConfig loads and validates the server configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildAnalyzer picks the HTTP analyzer when ML_SERVICE_URL is set and the
// keyword analyzer otherwise, wrapping it in a cache when one is given.
func buildAnalyzer(cfg *config.Config, c cache.Cache, metrics *telemetry.Metrics, logger zerolog.Logger) analysis.Analyzer {
	var an analysis.Analyzer = analysis.NewKeywordAnalyzer()
	namespace := "keyword"
	if cfg.MLServiceURL != "" {
		an = analysis.NewHTTPAnalyzer(cfg.MLServiceURL, cfg.MLServiceTimeout)
		namespace = "http"
	}
	logger.Info().Str("analyzer", namespace).Bool("cached", c != nil).Msg("analysis configured")
	if c == nil || cfg.AnalysisCacheTTL == 0 {
		return an
	}
	return analysis.NewCachedAnalyzer(an, c, namespace, cfg.AnalysisCacheTTL, metrics, logger)
}

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

// newServer builds the echo instance with the global middleware chain and
// mounts each handler under /api.
func newServer(cfg *config.Config, logger zerolog.Logger, tp *telemetry.Provider, handlers ...routeRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if tp != nil {
		e.Use(tp.Middleware())
	}
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	api := e.Group("/api")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return e
}

// wireHandlers builds the repositories, services and handlers over pool.
func wireHandlers(pool *pgxpool.Pool, an analysis.Analyzer) []routeRegistrar {
	patientRepo := patient.NewRepo(pool)
	providerRepo := provider.NewRepo(pool)

	providerSvc := provider.NewService(providerRepo, db.NewTxRunner(pool))
	intakeSvc := intake.NewService(intake.NewRepo(pool), patientRepo, an)
	appointmentSvc := appointment.NewService(appointment.NewRepo(pool), patientRepo, providerRepo, nil)
	patientSvc := patient.NewService(patientRepo, intakeSvc, appointmentSvc, db.NewTxRunner(pool), nil)

	return []routeRegistrar{
		patient.NewHandler(patientSvc),
		intake.NewHandler(intakeSvc),
		appointment.NewHandler(appointmentSvc),
		provider.NewHandler(providerSvc),
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		bootLogger := newLogger(&config.Config{Env: os.Getenv("ENV")}, os.Stdout)
		bootLogger.Error().Err(err).Msg("failed to load config")
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "intake-server",
		ServiceVersion: version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var resultCache cache.Cache
	healthDeps := map[string]db.Pinger{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "intake:")
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, analysis results will not be cached")
		} else {
			defer rc.Close()
			resultCache = rc
			healthDeps["redis"] = rc
		}
	}
	an := buildAnalyzer(cfg, resultCache, tp.Metrics(), logger)

	e := newServer(cfg, logger, tp, wireHandlers(pool, an)...)
	e.GET("/health", db.HealthHandler(pool, version, healthDeps))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
