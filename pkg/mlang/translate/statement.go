package translate

import (
	"fmt"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
)

// statement translates a node that registers records.
func (t *Translator) statement(node ast.Node, depth int) error {
	if err := t.enter(node, depth); err != nil {
		return err
	}

	switch n := node.(type) {
	case *ast.Formula:
		return t.formula(n, depth+1)

	case *ast.LoopedFormula:
		exp, err := t.unroll(n.Formula, n.LoopVariables)
		if err != nil {
			return err
		}
		for _, clone := range exp.Clones {
			if err := t.statement(clone, depth+1); err != nil {
				return err
			}
		}
		return nil

	case *ast.RuleGroup:
		for _, f := range n.Formulas {
			if err := t.statement(f, depth+1); err != nil {
				return err
			}
		}
		return nil

	case *ast.Verification:
		return t.verification(n, depth+1)
	}

	return mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, node.Location(),
		"%s node is not a statement", node.Kind())
}

// body translates the expression of a formula or verification condition
// and returns its source and its dependency set.
func (t *Translator) body(expr ast.Node, depth int) (string, formula.DependencySet, error) {
	frag, err := t.expr(expr, depth, false)
	if err != nil {
		return "", nil, err
	}
	deps, err := t.Dependencies(expr)
	if err != nil {
		return "", nil, err
	}
	deps.Union(frag.loopDeps)
	return frag.text, deps, nil
}

func (t *Translator) formula(n *ast.Formula, depth int) error {
	name, err := t.symbols.Sanitize(n.Name, n.Location())
	if err != nil {
		return err
	}
	source, deps, err := t.body(n.Expression, depth)
	if err != nil {
		return err
	}

	rec := &formula.Record{
		Name:         name,
		Source:       fmt.Sprintf("%s = %s", name, source),
		Dependencies: deps,
		Location:     n.Location(),
	}
	if err := t.registry.Register(rec); err != nil {
		return err
	}
	t.stats.Formulas++
	t.logger.Debug("formula registered", "formula", name, "dependencies", len(deps))
	return nil
}

func (t *Translator) verification(n *ast.Verification, depth int) error {
	rec := &formula.VerificationRecord{
		Name:         n.Name,
		Dependencies: make(formula.DependencySet),
		Location:     n.Location(),
	}
	for _, cond := range n.Conditions {
		if err := t.enter(cond, depth); err != nil {
			return err
		}
		source, deps, err := t.body(cond.Expression, depth+1)
		if err != nil {
			return err
		}
		rec.Conditions = append(rec.Conditions, formula.Condition{Source: source, Error: cond.Error})
		rec.Dependencies.Union(deps)
	}
	t.registry.AddVerification(rec)
	t.stats.Verifications++
	return nil
}
