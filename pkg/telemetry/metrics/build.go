package metrics

import (
	"time"

	"calculette-hq/mtranspile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildMetrics tracks transpilation runs.
//
// Metrics:
//   - mtranspile_builds_total: Builds by status and trigger
//   - mtranspile_build_duration_seconds: Build duration histogram
//   - mtranspile_phase_duration_seconds: Duration of each build phase
//   - mtranspile_files_total: AST files read by category
type BuildMetrics struct {
	buildsTotal   *prometheus.CounterVec
	buildDuration prometheus.Histogram
	phaseDuration *prometheus.HistogramVec
	filesTotal    *prometheus.CounterVec
	lastSuccess   prometheus.Gauge
}

// NewBuildMetrics creates and registers build metrics with the provided registry.
func NewBuildMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *BuildMetrics {
	bm := &BuildMetrics{
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "builds_total",
				Help:      "Total number of builds by status and trigger",
			},
			[]string{"status", "trigger"},
		),

		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "build_duration_seconds",
				Help:      "Duration of builds in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),

		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of build phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"phase"},
		),

		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "files_total",
				Help:      "Total number of AST files read by category",
			},
			[]string{"category"},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful build",
			},
		),
	}

	registry.MustRegister(
		bm.buildsTotal,
		bm.buildDuration,
		bm.phaseDuration,
		bm.filesTotal,
		bm.lastSuccess,
	)

	return bm
}

// RecordBuild records a finished build.
func (bm *BuildMetrics) RecordBuild(status, trigger string, duration time.Duration) {
	bm.buildsTotal.WithLabelValues(status, trigger).Inc()
	bm.buildDuration.Observe(duration.Seconds())
	if status == StatusSuccess {
		bm.lastSuccess.SetToCurrentTime()
	}
}

// RecordPhase records the duration of one build phase.
func (bm *BuildMetrics) RecordPhase(phase string, duration time.Duration) {
	bm.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordFile records an AST file read.
func (bm *BuildMetrics) RecordFile(category string) {
	bm.filesTotal.WithLabelValues(category).Inc()
}
