package translate

import (
	"fmt"
	"strings"

	"calculette-hq/mtranspile/pkg/codegen/python"
	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
)

// fragment is the translation of an expression.
type fragment struct {
	text     string
	closed   bool                  // Needs no parentheses when embedded
	loopDeps formula.DependencySet // Reported by nested loop expressions
}

// Operator precedence levels used to parenthesize infix operands.
const (
	precTernary = iota
	precBoolean
	precComparison
	precSum
	precProduct
	precAtom
)

func precedence(node ast.Node) int {
	switch node.Kind() {
	case ast.KindTernary:
		return precTernary
	case ast.KindBoolean:
		return precBoolean
	case ast.KindComparison, ast.KindMembership, ast.KindLoopVariable:
		return precComparison
	case ast.KindSum:
		return precSum
	case ast.KindProduct:
		return precProduct
	default:
		return precAtom
	}
}

var booleanOperators = map[string]string{
	"et": "and",
	"ou": "or",
}

var comparisonOperators = map[string]string{
	"=": "==",
}

// expr translates an expression node. When parenthesize is set, composite
// results are wrapped in parentheses.
func (t *Translator) expr(node ast.Node, depth int, parenthesize bool) (fragment, error) {
	if err := t.enter(node, depth); err != nil {
		return fragment{}, err
	}
	frag, err := t.dispatch(node, depth+1)
	if err != nil {
		return fragment{}, err
	}
	if frag.loopDeps == nil {
		frag.loopDeps = make(formula.DependencySet)
	}
	if parenthesize && !frag.closed {
		frag.text = "(" + frag.text + ")"
		frag.closed = true
	}
	t.logger.Debug("translated node", "kind", node.Kind(), "depth", depth, "source", frag.text)
	return frag, nil
}

func (t *Translator) dispatch(node ast.Node, depth int) (fragment, error) {
	switch n := node.(type) {
	case *ast.Number:
		return fragment{text: n.Value.String(), closed: true}, nil

	case *ast.String:
		return fragment{text: n.Value, closed: true}, nil

	case *ast.Symbol:
		return t.symbol(n)

	case *ast.Infix:
		return t.infix(n, depth)

	case *ast.Comparison:
		operator := n.Operator
		if mapped, ok := comparisonOperators[operator]; ok {
			operator = mapped
		}
		return t.join(depth, []ast.Node{n.Left, n.Right}, []string{operator}, precComparison, false)

	case *ast.Ternary:
		return t.ternary(n, depth)

	case *ast.FunctionCall:
		return t.functionCall(n, depth)

	case *ast.Interval:
		if n.First > n.Last {
			return fragment{}, mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, n.Location(),
				"interval first %d is greater than last %d", n.First, n.Last)
		}
		return fragment{text: fmt.Sprintf("range(%d, %d)", n.First, n.Last+1), closed: true}, nil

	case *ast.EnumerationValues:
		items := make([]string, len(n.Values))
		for i, v := range n.Values {
			items[i] = valueLiteral(v)
		}
		return fragment{text: python.Tuple(items), closed: true}, nil

	case *ast.Membership:
		return t.membership(n, depth)

	case *ast.LoopExpression:
		return t.loopExpression(n, depth)

	case *ast.LoopVariable:
		return t.loopVariable(n, depth)

	case *ast.Parenthesized:
		return t.expr(n.Expression, depth, true)

	case *ast.VariableConst:
		name, err := t.symbols.Sanitize(n.Name, n.Location())
		if err != nil {
			return fragment{}, err
		}
		return fragment{text: fmt.Sprintf("%s = %s", name, valueLiteral(n.Value))}, nil

	case *ast.VariableDecl, *ast.VerificationCondition:
		return fragment{}, noRule(node)

	case *ast.Formula, *ast.LoopedFormula, *ast.RuleGroup, *ast.Verification:
		return fragment{}, mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, node.Location(),
			"%s statement used as an expression", node.Kind())
	}
	return fragment{}, noRule(node)
}

func noRule(node ast.Node) error {
	return mlangErrors.New(mlangErrors.ErrorTypeUnknownNodeKind, node.Location(),
		"no translation rule for node kind %q", node.Kind())
}

// valueLiteral renders an enumeration or constant value.
func valueLiteral(v ast.Value) string {
	if v.Quoted {
		return python.Quote(v.Text)
	}
	return v.Text
}

func (t *Translator) symbol(n *ast.Symbol) (fragment, error) {
	if t.symbols.IsInput(n.Value) {
		return fragment{text: fmt.Sprintf("saisies.get(%s, 0)", python.Quote(n.Value)), closed: true}, nil
	}
	name, err := t.symbols.Sanitize(n.Value, n.Location())
	if err != nil {
		return fragment{}, err
	}
	return fragment{text: name, closed: true}, nil
}

func (t *Translator) infix(n *ast.Infix, depth int) (fragment, error) {
	operators := n.Operators
	if n.Type == ast.KindBoolean {
		operators = make([]string, len(n.Operators))
		for i, op := range n.Operators {
			if mapped, ok := booleanOperators[op]; ok {
				op = mapped
			}
			operators[i] = op
		}
	}
	return t.join(depth, n.Operands, operators, precedence(n), n.Type != ast.KindBoolean)
}

// join renders operand0 op0 operand1 op1 ... Operands binding looser than
// prec are parenthesized. Operands of equal precedence are parenthesized
// too, except the first one when the operators are left-associative.
func (t *Translator) join(depth int, operands []ast.Node, operators []string, prec int, leftAssoc bool) (fragment, error) {
	var sb strings.Builder
	deps := make(formula.DependencySet)
	for i, operand := range operands {
		p := precedence(operand)
		wrap := p < prec || (p == prec && (!leftAssoc || i > 0))
		frag, err := t.expr(operand, depth, wrap)
		if err != nil {
			return fragment{}, err
		}
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(operators[i-1])
			sb.WriteString(" ")
		}
		sb.WriteString(frag.text)
		deps.Union(frag.loopDeps)
	}
	return fragment{text: sb.String(), loopDeps: deps}, nil
}

func (t *Translator) ternary(n *ast.Ternary, depth int) (fragment, error) {
	ifTrue, err := t.expr(n.IfTrue, depth, true)
	if err != nil {
		return fragment{}, err
	}
	cond, err := t.expr(n.Condition, depth, true)
	if err != nil {
		return fragment{}, err
	}
	deps := make(formula.DependencySet)
	deps.Union(ifTrue.loopDeps)
	deps.Union(cond.loopDeps)

	ifFalse := "0"
	if n.IfFalse != nil {
		frag, err := t.expr(n.IfFalse, depth, true)
		if err != nil {
			return fragment{}, err
		}
		ifFalse = frag.text
		deps.Union(frag.loopDeps)
	}
	return fragment{text: fmt.Sprintf("%s if %s else %s", ifTrue.text, cond.text, ifFalse), loopDeps: deps}, nil
}

func (t *Translator) functionCall(n *ast.FunctionCall, depth int) (fragment, error) {
	name, known := t.functions.Resolve(n.Name)
	if !known {
		t.stats.UnknownFunctions[n.Name]++
		if t.stats.UnknownFunctions[n.Name] == 1 {
			t.logger.Warn("function not in the function table, passing its name through",
				"function", n.Name,
				"location", n.Location().String(),
				"suggestion", mlangErrors.SuggestName(n.Name, t.functions.Names(), "Known functions"),
			)
		}
	}

	args := make([]string, len(n.Arguments))
	deps := make(formula.DependencySet)
	for i, arg := range n.Arguments {
		frag, err := t.expr(arg, depth, false)
		if err != nil {
			return fragment{}, err
		}
		args[i] = frag.text
		deps.Union(frag.loopDeps)
	}
	return fragment{text: fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), closed: true, loopDeps: deps}, nil
}

func (t *Translator) membership(n *ast.Membership, depth int) (fragment, error) {
	subject, err := t.expr(n.Subject, depth, true)
	if err != nil {
		return fragment{}, err
	}
	operator := "in"
	if n.Negative {
		operator = "not in"
	}

	var enumeration string
	if n.Enumeration != nil {
		frag, err := t.expr(n.Enumeration, depth, true)
		if err != nil {
			return fragment{}, err
		}
		enumeration = frag.text
	} else {
		enumeration, err = t.symbols.Sanitize(n.EnumerationName, n.Location())
		if err != nil {
			return fragment{}, err
		}
	}
	return fragment{text: fmt.Sprintf("%s %s %s", subject.text, operator, enumeration), loopDeps: subject.loopDeps}, nil
}

func (t *Translator) loopVariable(n *ast.LoopVariable, depth int) (fragment, error) {
	parts := make([]string, len(n.Enumerations))
	for i, enum := range n.Enumerations {
		frag, err := t.expr(enum, depth, true)
		if err != nil {
			return fragment{}, err
		}
		parts[i] = fmt.Sprintf("%s in %s", n.Name, frag.text)
	}
	return fragment{text: strings.Join(parts, " or ")}, nil
}

// loopExpression renders the list of the unrolled bodies. The returned
// dependencies are the symbols of every clone, nested loop expressions
// contributing the dependencies of their own clones.
func (t *Translator) loopExpression(n *ast.LoopExpression, depth int) (fragment, error) {
	exp, err := t.unroll(n.Expression, n.LoopVariables)
	if err != nil {
		return fragment{}, err
	}

	items := make([]string, len(exp.Clones))
	deps := make(formula.DependencySet)
	for i, clone := range exp.Clones {
		frag, err := t.expr(clone, depth, false)
		if err != nil {
			return fragment{}, err
		}
		items[i] = frag.text
		deps.Union(frag.loopDeps)
		for _, name := range ast.Symbols(clone, ast.KindLoopExpression) {
			sanitized, err := t.symbols.Sanitize(name, clone.Location())
			if err != nil {
				return fragment{}, err
			}
			deps.Add(sanitized)
		}
	}
	return fragment{text: "[" + strings.Join(items, ", ") + "]", closed: true, loopDeps: deps}, nil
}

func (t *Translator) unroll(node ast.Node, lvs []*ast.LoopVariable) (*Expansion, error) {
	exp, err := Unroll(node, lvs, t.maxClones)
	if err != nil {
		return nil, err
	}
	t.stats.Clones += len(exp.Clones)
	for _, name := range exp.Ambiguous {
		t.stats.AmbiguousSplices++
		t.logger.Debug("loop variable occurs several times in a name, only the first occurrence is replaced",
			"name", name,
			"location", node.Location().String(),
		)
	}
	return exp, nil
}
