package mlang

import (
	"log/slog"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/parser"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
	"calculette-hq/mtranspile/pkg/mlang/translate"
)

// Program is an ordered translation, ready to be emitted.
type Program struct {
	Symbols     *symbols.Table
	Registry    *formula.Registry
	Order       []string            // Writable formulas in evaluation order
	Passes      int                 // Ordering passes
	Formulas    []formula.Resolved  // Order with the source of every formula
	Diagnostics []*mlangErrors.Error // Formulas ordered without source
}

// Symbols builds a Symbol Table from a variables file held in memory.
// Only variable_* nodes are decoded.
func Symbols(data []byte, fileName string) (*symbols.Table, error) {
	entries, err := parser.NewParser().ParseBytes(data, fileName)
	if err != nil {
		return nil, err
	}
	nodes := make([]ast.Node, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(string(entry.Type), "variable_") {
			continue
		}
		node, err := entry.Decode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return symbols.FromNodes(nodes)
}

// TranslateNodes translates nodes against table into a new registry.
func TranslateNodes(table *symbols.Table, nodes []ast.Node) (*formula.Registry, error) {
	registry := formula.NewRegistry()
	translator := translate.New(table, registry)
	for _, node := range nodes {
		if _, _, err := translator.Translate(node); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// TranslateBytes translates the entries of a rule or verification file
// that belong to application. An empty application keeps every entry.
func TranslateBytes(table *symbols.Table, data []byte, fileName, application string) (*formula.Registry, error) {
	entries, err := parser.NewParser().ParseBytes(data, fileName)
	if err != nil {
		return nil, err
	}
	nodes := make([]ast.Node, 0, len(entries))
	for _, entry := range entries {
		if application != "" && !entry.HasApplication(application) {
			continue
		}
		node, err := entry.Decode()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return TranslateNodes(table, nodes)
}

// Order orders the formulas of registry and resolves their sources.
// A nil logger uses slog.Default.
func Order(table *symbols.Table, registry *formula.Registry, logger *slog.Logger) (*Program, error) {
	ordering, err := formula.NewOrderer(table).WithLogger(logger).Order(registry.Dependencies())
	if err != nil {
		return nil, err
	}
	resolved, diagnostics := registry.Resolve(ordering.Names)
	return &Program{
		Symbols:     table,
		Registry:    registry,
		Order:       ordering.Names,
		Passes:      ordering.Passes,
		Formulas:    resolved,
		Diagnostics: diagnostics.Errors,
	}, nil
}
