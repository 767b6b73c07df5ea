package translate

import (
	"strconv"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Binding is a loop variable with its value domain.
type Binding struct {
	Name   string
	Values []string
}

// Domain returns the values of a loop variable: the union of the values of
// its enumerations, in first-occurrence order. A limit above zero caps the
// number of values.
func Domain(lv *ast.LoopVariable, limit int) ([]string, error) {
	if lv.Name == "" {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, lv.Location(),
			"loop variable has no name")
	}
	if len(lv.Enumerations) == 0 {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, lv.Location(),
			"loop variable %q has no enumerations", lv.Name)
	}

	var values []string
	seen := make(map[string]bool)
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	tooMany := func(n int64) error {
		return mlangErrors.New(mlangErrors.ErrorTypeCloneLimit, lv.Location(),
			"loop variable %q has more than %d values (%d)", lv.Name, limit, n)
	}

	for _, enum := range lv.Enumerations {
		switch e := enum.(type) {
		case *ast.EnumerationValues:
			for _, v := range e.Values {
				add(v.Text)
			}
		case *ast.Interval:
			if e.First > e.Last {
				return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, e.Location(),
					"interval first %d is greater than last %d", e.First, e.Last)
			}
			if n := int64(e.Last) - int64(e.First) + 1; limit > 0 && n > int64(limit) {
				return nil, tooMany(n)
			}
			for i := e.First; i <= e.Last; i++ {
				add(strconv.Itoa(i))
			}
		default:
			return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, enum.Location(),
				"loop variable %q: %s is not an enumeration", lv.Name, enum.Kind())
		}
		if limit > 0 && len(values) > limit {
			return nil, tooMany(int64(len(values)))
		}
	}
	if len(values) == 0 {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, lv.Location(),
			"loop variable %q has an empty domain", lv.Name)
	}
	return values, nil
}

// Bindings computes the domain of every loop variable. A limit above zero
// caps the product of the domain sizes, the number of clones.
func Bindings(lvs []*ast.LoopVariable, limit int) ([]Binding, error) {
	bindings := make([]Binding, len(lvs))
	clones := int64(1)
	for i, lv := range lvs {
		values, err := Domain(lv, limit)
		if err != nil {
			return nil, err
		}
		clones *= int64(len(values))
		if limit > 0 && clones > int64(limit) {
			return nil, mlangErrors.New(mlangErrors.ErrorTypeCloneLimit, lv.Location(),
				"loop unrolls into more than %d clones", limit)
		}
		bindings[i] = Binding{Name: lv.Name, Values: values}
	}
	return bindings, nil
}

// Combinations returns the Cartesian product of the binding domains. The
// first binding varies slowest.
func Combinations(bindings []Binding) [][]string {
	combos := [][]string{{}}
	for _, b := range bindings {
		next := make([][]string, 0, len(combos)*len(b.Values))
		for _, combo := range combos {
			for _, v := range b.Values {
				c := make([]string, len(combo), len(combo)+1)
				copy(c, combo)
				next = append(next, append(c, v))
			}
		}
		combos = next
	}
	return combos
}

// Splice replaces, binding by binding, the first occurrence of each loop
// variable name in text with its value.
func Splice(text string, bindings []Binding, values []string) string {
	for i, b := range bindings {
		text = strings.Replace(text, b.Name, values[i], 1)
	}
	return text
}

// ambiguous returns true if a loop variable name occurs more than once in
// text, in which case Splice may rewrite the wrong occurrence.
func ambiguous(text string, bindings []Binding) bool {
	for _, b := range bindings {
		if b.Name != "" && strings.Count(text, b.Name) > 1 {
			return true
		}
	}
	return false
}

// Expansion is the result of unrolling a node.
type Expansion struct {
	Clones    []ast.Node
	Ambiguous []string // Names whose splice matched several occurrences
}

// Unroll clones node once per combination of the loop variables and
// splices the values into every symbol. When node is a formula, its name is
// spliced too. A limit above zero caps the number of clones.
func Unroll(node ast.Node, lvs []*ast.LoopVariable, limit int) (*Expansion, error) {
	bindings, err := Bindings(lvs, limit)
	if err != nil {
		return nil, err
	}

	exp := &Expansion{}
	reported := make(map[string]bool)
	report := func(text string) {
		if !reported[text] && ambiguous(text, bindings) {
			reported[text] = true
			exp.Ambiguous = append(exp.Ambiguous, text)
		}
	}

	for _, values := range Combinations(bindings) {
		clone := ast.Clone(node)
		ast.Inspect(clone, func(n ast.Node) bool {
			if sym, ok := n.(*ast.Symbol); ok {
				report(sym.Value)
				sym.Value = Splice(sym.Value, bindings, values)
			}
			return true
		})
		if f, ok := clone.(*ast.Formula); ok {
			report(f.Name)
			f.Name = Splice(f.Name, bindings, values)
		}
		exp.Clones = append(exp.Clones, clone)
	}
	return exp, nil
}
