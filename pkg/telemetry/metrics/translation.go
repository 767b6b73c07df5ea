package metrics

import (
	"calculette-hq/mtranspile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TranslationMetrics tracks what the translator produced.
//
// Metrics:
//   - mtranspile_nodes_total: Translated AST nodes by kind
//   - mtranspile_formulas: Formulas of the last build by state
//   - mtranspile_variables: Variable definitions of the last build by kind
//   - mtranspile_ordering_passes: Passes of the last ordering
//   - mtranspile_unknown_function_calls_total: Calls to functions missing from the table
//   - mtranspile_diagnostics_total: Non-fatal diagnostics by type
type TranslationMetrics struct {
	nodesTotal       *prometheus.CounterVec
	formulas         *prometheus.GaugeVec
	variables        *prometheus.GaugeVec
	orderingPasses   prometheus.Gauge
	unknownFunctions *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec
}

// NewTranslationMetrics creates and registers translation metrics with the provided registry.
func NewTranslationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TranslationMetrics {
	tm := &TranslationMetrics{
		nodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "nodes_total",
				Help:      "Total number of translated AST nodes by kind",
			},
			[]string{"kind"},
		),

		formulas: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "formulas",
				Help:      "Formulas of the last build by state (registered, ordered, placeholder, duplicate)",
			},
			[]string{"state"},
		),

		variables: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "variables",
				Help:      "Variable definitions of the last build by kind",
			},
			[]string{"kind"},
		),

		orderingPasses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "ordering_passes",
				Help:      "Number of passes of the last formula ordering",
			},
		),

		unknownFunctions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "unknown_function_calls_total",
				Help:      "Total number of calls to functions missing from the function table",
			},
			[]string{"function"},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of non-fatal diagnostics by type",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		tm.nodesTotal,
		tm.formulas,
		tm.variables,
		tm.orderingPasses,
		tm.unknownFunctions,
		tm.diagnosticsTotal,
	)

	return tm
}
