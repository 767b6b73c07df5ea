package formula

import (
	"fmt"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Placeholder returns the zero-valued definition emitted for a formula
// without generated source.
func Placeholder(name string) string {
	return fmt.Sprintf("%s = 0  # Formula source not found", name)
}

// Resolved is an ordered formula ready for emission.
type Resolved struct {
	Name         string
	Source       string
	Dependencies DependencySet
	Placeholder  bool
}

// Resolve looks up the source of every ordered name. Names without source
// get a placeholder and an unresolved_formula_source diagnostic.
func (r *Registry) Resolve(order []string) ([]Resolved, *mlangErrors.ErrorList) {
	diagnostics := mlangErrors.NewErrorList()
	resolved := make([]Resolved, 0, len(order))
	for _, name := range order {
		rec, ok := r.records[name]
		if !ok {
			diagnostics.Add(mlangErrors.New(mlangErrors.ErrorTypeUnresolvedFormulaSource, ast.Location{},
				"formula %q has no generated source, emitting a zero placeholder", name))
			resolved = append(resolved, Resolved{
				Name:         name,
				Source:       Placeholder(name),
				Dependencies: r.overrides[name],
				Placeholder:  true,
			})
			continue
		}
		deps := rec.Dependencies
		if override, ok := r.overrides[name]; ok {
			deps = override
		}
		resolved = append(resolved, Resolved{Name: name, Source: rec.Source, Dependencies: deps})
	}
	return resolved, diagnostics
}
