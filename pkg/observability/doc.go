// Package observability provides structured logging, Prometheus metrics,
// health probes and OpenTelemetry tracing for spezi.
//
// # Structured Logging
//
// Logs are JSON lines written through logrus:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("port", 3000).Info("API server listening")
//
// Handlers log through the request context so the request ID is attached:
//
//	observability.FromContext(r.Context()).WithError(err).Error("list users failed")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	observability.RegisterMetricsEndpoint(opsMux, registry)
//
// HTTP series are labelled with the mux route template, not the raw path.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version)
//	checker.AddProbe("database", db.HealthCheck)
//	observability.RegisterHealthRoutes(opsMux, checker)
//
// /healthz always answers 200 while the process runs. /readyz runs every
// probe and answers 503 while any of them fails.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg.OTel, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
