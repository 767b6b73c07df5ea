package formula

import (
	"log/slog"
	"sort"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Record is the generated source of one formula.
type Record struct {
	Name         string        `json:"name"`
	Source       string        `json:"source"`
	Dependencies DependencySet `json:"dependencies"`
	Location     ast.Location  `json:"-"`
}

// Condition is one translated verification condition.
type Condition struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// VerificationRecord is a translated verification rule.
type VerificationRecord struct {
	Name         string        `json:"name"`
	Conditions   []Condition   `json:"conditions"`
	Dependencies DependencySet `json:"dependencies"`
	Location     ast.Location  `json:"-"`
}

// Registry collects formula and verification records.
type Registry struct {
	records       map[string]*Record
	overrides     map[string]DependencySet
	verifications []*VerificationRecord
	strict        bool
	duplicates    int
	logger        *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records:   make(map[string]*Record),
		overrides: make(map[string]DependencySet),
		logger:    slog.Default(),
	}
}

// WithStrict makes duplicate formula definitions an error.
func (r *Registry) WithStrict(strict bool) *Registry {
	r.strict = strict
	return r
}

// WithLogger sets the logger used for duplicate warnings.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Register adds a formula record. A second definition of the same name
// replaces the first one, or fails with duplicate_formula in strict mode.
func (r *Registry) Register(rec *Record) error {
	if previous, ok := r.records[rec.Name]; ok {
		if r.strict {
			return mlangErrors.New(mlangErrors.ErrorTypeDuplicateFormula, rec.Location,
				"formula %q is already defined at %s", rec.Name, previous.Location)
		}
		r.duplicates++
		r.logger.Warn("formula redefined, keeping the last definition",
			"formula", rec.Name,
			"previous", previous.Location.String(),
			"location", rec.Location.String(),
		)
	}
	if rec.Dependencies == nil {
		rec.Dependencies = make(DependencySet)
	}
	r.records[rec.Name] = rec
	return nil
}

// AddVerification appends a verification record.
func (r *Registry) AddVerification(rec *VerificationRecord) {
	if rec.Dependencies == nil {
		rec.Dependencies = make(DependencySet)
	}
	r.verifications = append(r.verifications, rec)
}

// SetDependencies replaces the dependency set of name, bypassing the
// derived one. It applies whether the formula is registered before or after.
func (r *Registry) SetDependencies(name string, deps DependencySet) {
	r.overrides[name] = deps
}

// Lookup returns the record of name.
func (r *Registry) Lookup(name string) (*Record, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// Source returns the generated source of name.
func (r *Registry) Source(name string) (string, bool) {
	rec, ok := r.records[name]
	if !ok {
		return "", false
	}
	return rec.Source, true
}

// Dependencies returns the dependency set of every formula, including
// names only known through SetDependencies.
func (r *Registry) Dependencies() map[string]DependencySet {
	deps := make(map[string]DependencySet, len(r.records)+len(r.overrides))
	for name, rec := range r.records {
		deps[name] = rec.Dependencies
	}
	for name, override := range r.overrides {
		deps[name] = override
	}
	return deps
}

// Records returns the formula records sorted by name.
func (r *Registry) Records() []*Record {
	recs := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Name < recs[j].Name })
	return recs
}

// Verifications returns the verification records in registration order.
func (r *Registry) Verifications() []*VerificationRecord {
	return r.verifications
}

// Len returns the number of formula records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Duplicates returns how many formula definitions replaced an earlier one.
func (r *Registry) Duplicates() int {
	return r.duplicates
}
