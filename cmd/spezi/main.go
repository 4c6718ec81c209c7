package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/spezi-dev/spezi/pkg/api"
	"github.com/spezi-dev/spezi/pkg/async"
	"github.com/spezi-dev/spezi/pkg/bootstrap"
	"github.com/spezi-dev/spezi/pkg/config"
	"github.com/spezi-dev/spezi/pkg/httputil"
	"github.com/spezi-dev/spezi/pkg/middleware"
	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/repository"
	"github.com/spezi-dev/spezi/pkg/storage"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "spezi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	level, err := cfg.Observability.Level()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(level, os.Stdout).WithField("service", "spezi")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Steps run in reverse registration order: listeners first, the pool last.
	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	abort := func(err error) error {
		if serr := shutdown.Shutdown(context.Background()); serr != nil {
			logger.WithError(serr).Warn("Cleanup after failed startup was incomplete")
		}
		return err
	}

	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	shutdown.Register("database", func(context.Context) error { return db.Close() })
	logger.WithField("driver", string(db.Dialect())).Info("Connected to database")

	if cfg.Storage.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return abort(err)
		}
	}

	repos := repository.New(db)

	// The listener must not bind before an admin key exists.
	result, err := bootstrap.Run(ctx, repos.APIUsers, logger)
	if err != nil {
		return abort(err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)
	observability.RegisterDBStats(registry, db.DB, "spezi")
	if result.Created {
		metrics.BootstrapKeysCreated.Inc()
	}

	providers, err := observability.InitOTel(ctx, cfg.Observability.OTel, logger)
	if err != nil {
		return abort(fmt.Errorf("failed to initialize OpenTelemetry: %w", err))
	}
	shutdown.Register("opentelemetry", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	runner := async.NewRunner(logger, metrics, cfg.Server.TaskTimeout)
	shutdown.Register("background tasks", runner.Close)

	authMW := middleware.NewAuthMiddleware(repos.APIUsers, runner, logger, metrics)
	var handler http.Handler = api.NewServer(repos, authMW, logger, metrics)
	if providers != nil {
		handler = otelhttp.NewHandler(handler, "spezi")
	}
	handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
	)(handler)

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	opsMux := http.NewServeMux()
	health := observability.NewHealthChecker(version)
	health.AddProbe("database", db.HealthCheck)
	observability.RegisterHealthRoutes(opsMux, health)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(opsMux, registry)
	}
	opsServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.OpsPort),
		Handler:      opsMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdown.Register("ops server", opsServer.Shutdown)
	shutdown.Register("api server", apiServer.Shutdown)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(apiServer, "api", logger) })
	g.Go(func() error { return serve(opsServer, "ops", logger) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		return shutdown.Shutdown(context.Background())
	})

	return g.Wait()
}

// serve runs srv until it is shut down
func serve(srv *http.Server, name string, logger *observability.Logger) error {
	logger.WithFields(map[string]interface{}{
		"server": name,
		"addr":   srv.Addr,
	}).Info("Listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
