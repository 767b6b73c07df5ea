// Package telemetry groups the observability packages of mtranspile.
//
//   - logging: slog logger construction with run context and credential redaction
//   - metrics: Prometheus metrics for builds and translation
//   - tracing: OpenTelemetry spans for build phases
package telemetry
