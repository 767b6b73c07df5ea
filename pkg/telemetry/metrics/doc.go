// Package metrics provides Prometheus metrics collection for mtranspile.
//
// # Metrics Categories
//
//   - Build Metrics: build count and duration by status and trigger, phase
//     durations, AST files read
//   - Translation Metrics: translated nodes by kind, formula and variable
//     counts, ordering passes, unknown function calls, diagnostics
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordPhase("translate", elapsed)
//	collector.RecordBuild(metrics.StatusSuccess, "cli", total)
//
// The watch command serves the registry through Handler.
package metrics
