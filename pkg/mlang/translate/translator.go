package translate

import (
	"log/slog"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

// DefaultMaxDepth bounds the nesting of translated nodes.
const DefaultMaxDepth = 512

// DefaultMaxClones bounds the clones a single loop unrolls into.
const DefaultMaxClones = 100000

// Stats counts what a Translator did.
type Stats struct {
	Nodes            map[ast.Kind]int // Translated nodes per kind
	Formulas         int              // Registered formula records
	Verifications    int              // Registered verification records
	Clones           int              // Clones produced by unrolling
	AmbiguousSplices int              // Symbol or formula names spliced with several matches
	UnknownFunctions map[string]int   // Calls to functions missing from the table
}

// Translator translates AST nodes against a Symbol Table and records
// statements in a Registry.
type Translator struct {
	symbols   *symbols.Table
	registry  *formula.Registry
	functions *FunctionTable
	maxDepth  int
	maxClones int
	logger    *slog.Logger
	stats     Stats
}

// New creates a translator with the default function table and caps.
func New(table *symbols.Table, registry *formula.Registry) *Translator {
	return &Translator{
		symbols:   table,
		registry:  registry,
		functions: NewFunctionTable(nil),
		maxDepth:  DefaultMaxDepth,
		maxClones: DefaultMaxClones,
		logger:    slog.Default(),
		stats: Stats{
			Nodes:            make(map[ast.Kind]int),
			UnknownFunctions: make(map[string]int),
		},
	}
}

// WithFunctions replaces the function table.
func (t *Translator) WithFunctions(functions *FunctionTable) *Translator {
	if functions != nil {
		t.functions = functions
	}
	return t
}

// WithMaxDepth sets the nesting cap. Values below 1 keep the default.
func (t *Translator) WithMaxDepth(depth int) *Translator {
	if depth > 0 {
		t.maxDepth = depth
	}
	return t
}

// WithMaxClones sets the unrolling cap. Values below 1 keep the default.
func (t *Translator) WithMaxClones(clones int) *Translator {
	if clones > 0 {
		t.maxClones = clones
	}
	return t
}

// WithLogger sets the logger.
func (t *Translator) WithLogger(logger *slog.Logger) *Translator {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// Stats returns the counters accumulated so far.
func (t *Translator) Stats() Stats {
	return t.stats
}

// Translate dispatches node. Expressions return their text and inline set
// to true; statements register records and return inline set to false.
func (t *Translator) Translate(node ast.Node) (text string, inline bool, err error) {
	if node.Kind().IsStatement() {
		return "", false, t.statement(node, 0)
	}
	frag, err := t.expr(node, 0, false)
	if err != nil {
		return "", false, err
	}
	return frag.text, true, nil
}

// Expression translates an expression and returns its text together with
// the dependencies reported by the loop expressions it contains.
func (t *Translator) Expression(node ast.Node) (string, formula.DependencySet, error) {
	frag, err := t.expr(node, 0, false)
	if err != nil {
		return "", nil, err
	}
	return frag.text, frag.loopDeps, nil
}

// Dependencies returns the sanitized symbol names of node outside loop
// expressions.
func (t *Translator) Dependencies(node ast.Node) (formula.DependencySet, error) {
	deps := make(formula.DependencySet)
	for _, sym := range ast.Find(node, ast.KindSymbol, ast.KindLoopExpression) {
		name, err := t.symbols.Sanitize(sym.(*ast.Symbol).Value, sym.Location())
		if err != nil {
			return nil, err
		}
		deps.Add(name)
	}
	return deps, nil
}

func (t *Translator) enter(node ast.Node, depth int) error {
	if depth > t.maxDepth {
		return mlangErrors.New(mlangErrors.ErrorTypeDepthExceeded, node.Location(),
			"%s node nested deeper than %d levels", node.Kind(), t.maxDepth)
	}
	t.stats.Nodes[node.Kind()]++
	return nil
}
