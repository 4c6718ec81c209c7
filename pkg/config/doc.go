// Package config loads spezi configuration.
//
// # Layering
//
// Values are resolved in three layers, later layers winning:
//
//  1. Default()
//  2. the YAML file named by SPEZI_CONFIG_FILE, if set
//  3. environment variables
//
// A YAML file mirrors the Config structure:
//
//	server:
//	  port: "3000"
//	  ops_port: "9090"
//	  task_timeout: 5s
//	storage:
//	  driver: postgres
//	  dsn: postgres://spezi:spezi@db:5432/spezi?sslmode=disable
//	observability:
//	  log_level: info
//	  otel:
//	    enabled: true
//	    endpoint: otel-collector:4317
//
// # Environment
//
// Server:
//
//	PORT / SPEZI_PORT="3000"      # SPEZI_PORT wins when both are set
//	SPEZI_HOST="0.0.0.0"
//	SPEZI_OPS_PORT="9090"
//	SPEZI_SHUTDOWN_TIMEOUT="30s"
//	SPEZI_TASK_TIMEOUT="5s"
//
// Storage:
//
//	SPEZI_DB_DRIVER="postgres"    # postgres or sqlite3
//	SPEZI_DB_DSN="postgres://..."
//	SPEZI_DB_MAX_CONNS="20"
//	SPEZI_DB_AUTO_MIGRATE="true"
//
// Observability:
//
//	SPEZI_LOG_LEVEL="info"
//	SPEZI_METRICS_ENABLED="true"
//	SPEZI_OTEL_ENABLED="false"
//	SPEZI_OTEL_ENDPOINT="localhost:4317"
//
// Malformed numbers, booleans and durations are reported as errors rather
// than silently replaced by defaults.
package config
