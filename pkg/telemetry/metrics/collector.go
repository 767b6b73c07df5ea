package metrics

import (
	"sync"
	"time"

	"calculette-hq/mtranspile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Build statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Formula states reported by SetFormulas.
const (
	FormulasRegistered  = "registered"
	FormulasOrdered     = "ordered"
	FormulasPlaceholder = "placeholder"
	FormulasDuplicate   = "duplicate"
)

// Collector owns every Prometheus metric of mtranspile and the registry
// they are registered with.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	buildMetrics       *BuildMetrics
	translationMetrics *TranslationMetrics

	// Function names come from the AST, so their label values are capped.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		buildMetrics:       NewBuildMetrics(cfg, registry),
		translationMetrics: NewTranslationMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(200),
	}
}

// RecordBuild records a finished build.
//
// Parameters:
//   - status: StatusSuccess or StatusError
//   - trigger: what started the build ("cli", "fsnotify", "cron")
//   - duration: total build duration
func (c *Collector) RecordBuild(status, trigger string, duration time.Duration) {
	c.buildMetrics.RecordBuild(status, trigger, duration)
}

// RecordPhase records the duration of a build phase ("symbols",
// "translate", "order", "emit", "state").
func (c *Collector) RecordPhase(phase string, duration time.Duration) {
	c.buildMetrics.RecordPhase(phase, duration)
}

// RecordFile records an AST file read ("variables", "rules",
// "verifications", "constants", "dependencies").
func (c *Collector) RecordFile(category string) {
	c.buildMetrics.RecordFile(category)
}

// RecordNodes adds n translated nodes of kind.
func (c *Collector) RecordNodes(kind string, n int) {
	c.translationMetrics.nodesTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordUnknownFunction adds n calls to a function missing from the table.
func (c *Collector) RecordUnknownFunction(name string, n int) {
	if !c.cardinalityLimiter.Allow(name) {
		name = "other"
	}
	c.translationMetrics.unknownFunctions.WithLabelValues(name).Add(float64(n))
}

// RecordDiagnostic records a non-fatal diagnostic.
func (c *Collector) RecordDiagnostic(errType string) {
	c.translationMetrics.diagnosticsTotal.WithLabelValues(errType).Inc()
}

// SetFormulas sets the number of formulas in state for the last build.
func (c *Collector) SetFormulas(state string, n int) {
	c.translationMetrics.formulas.WithLabelValues(state).Set(float64(n))
}

// SetVariables sets the number of variable definitions of kind.
func (c *Collector) SetVariables(kind string, n int) {
	c.translationMetrics.variables.WithLabelValues(kind).Set(float64(n))
}

// SetOrderingPasses sets the number of passes of the last ordering.
func (c *Collector) SetOrderingPasses(n int) {
	c.translationMetrics.orderingPasses.Set(float64(n))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if the limit is not reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
