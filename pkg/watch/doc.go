// Package watch keeps the generated Python sources up to date.
//
// A Watcher runs one build at start, then rebuilds whenever a JSON file
// of the AST directory changes (fsnotify, debounced by Watch.Debounce)
// and on the optional Watch.Schedule cron expression. Builds are
// serialized. A failed build is logged and the next change retries.
//
// When Watch.MetricsAddress is set, the Prometheus registry of the build
// collector is served at Telemetry.Metrics.Path for the lifetime of Run.
//
//	w, err := watch.New(cfg, builder)
//	if err != nil {
//		return err
//	}
//	return w.WithMetrics(collector).Run(ctx)
package watch
