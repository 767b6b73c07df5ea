package ast

import "encoding/json"

// Kind is the "type" discriminant of a JSON AST node.
type Kind string

const (
	KindInteger               Kind = "integer"
	KindFloat                 Kind = "float"
	KindString                Kind = "string"
	KindSymbol                Kind = "symbol"
	KindBoolean               Kind = "boolean_expression"
	KindProduct               Kind = "product_expression"
	KindSum                   Kind = "sum_expression"
	KindComparison            Kind = "comparaison"
	KindTernary               Kind = "ternary_operator"
	KindFunctionCall          Kind = "function_call"
	KindInterval              Kind = "interval"
	KindEnumerationValues     Kind = "enumeration_values"
	KindMembership            Kind = "dans"
	KindLoopExpression        Kind = "loop_expression"
	KindLoopVariable          Kind = "loop_variable"
	KindExpression            Kind = "expression"
	KindVariableConst         Kind = "variable_const"
	KindVariableInput         Kind = "variable_saisie"
	KindVariableComputed      Kind = "variable_calculee"
	KindFormula               Kind = "formula"
	KindLoopedFormula         Kind = "pour_formula"
	KindRuleGroup             Kind = "regle"
	KindVerification          Kind = "verif"
	KindVerificationCondition Kind = "verif_condition"
)

// Kinds lists every known discriminant.
var Kinds = []Kind{
	KindInteger, KindFloat, KindString, KindSymbol,
	KindBoolean, KindProduct, KindSum, KindComparison, KindTernary,
	KindFunctionCall, KindInterval, KindEnumerationValues, KindMembership,
	KindLoopExpression, KindLoopVariable, KindExpression,
	KindVariableConst, KindVariableInput, KindVariableComputed,
	KindFormula, KindLoopedFormula, KindRuleGroup,
	KindVerification, KindVerificationCondition,
}

// IsKnown returns true if k is one of the known discriminants.
func (k Kind) IsKnown() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsAtomic returns true for kinds that never need parentheses when
// embedded in a larger expression.
func (k Kind) IsAtomic() bool {
	switch k {
	case KindInteger, KindFloat, KindString, KindSymbol, KindFunctionCall:
		return true
	default:
		return false
	}
}

// IsStatement returns true for kinds that register records instead of
// producing inline expression text.
func (k Kind) IsStatement() bool {
	switch k {
	case KindFormula, KindLoopedFormula, KindRuleGroup, KindVerification:
		return true
	default:
		return false
	}
}

// Node is implemented by every AST node type of this package.
type Node interface {
	// Kind returns the node discriminant.
	Kind() Kind

	// Location returns where the node was decoded from.
	Location() Location

	// Children returns the direct child nodes in source order.
	Children() []Node

	node()
}

// Base carries the fields shared by all nodes.
type Base struct {
	Loc Location
}

// Location returns where the node was decoded from.
func (b Base) Location() Location { return b.Loc }

func (Base) node() {}

// Value is a scalar member of an enumeration or a constant value.
// Text holds the JSON text of a number, or the content of a string.
type Value struct {
	Text   string `json:"text"`
	Quoted bool   `json:"quoted,omitempty"`
}

// NumberValue returns a numeric Value.
func NumberValue(text string) Value { return Value{Text: text} }

// StringValue returns a string Value.
func StringValue(text string) Value { return Value{Text: text, Quoted: true} }

// String returns the bare text of the value.
func (v Value) String() string { return v.Text }

// Number is an integer or float literal. Value keeps the JSON text so the
// literal is rendered exactly as written.
type Number struct {
	Base
	Type  Kind // KindInteger or KindFloat
	Value json.Number
}

func (n *Number) Kind() Kind       { return n.Type }
func (n *Number) Children() []Node { return nil }

// String is a string literal.
type String struct {
	Base
	Value string
}

func (n *String) Kind() Kind       { return KindString }
func (n *String) Children() []Node { return nil }

// Symbol references a variable by its raw, unsanitized name.
type Symbol struct {
	Base
	Value string
}

func (n *Symbol) Kind() Kind       { return KindSymbol }
func (n *Symbol) Children() []Node { return nil }

// Infix is a boolean, product or sum expression.
// Operands and Operators are parallel: len(Operands) == len(Operators)+1.
type Infix struct {
	Base
	Type      Kind // KindBoolean, KindProduct or KindSum
	Operands  []Node
	Operators []string
}

func (n *Infix) Kind() Kind       { return n.Type }
func (n *Infix) Children() []Node { return n.Operands }

// Comparison compares two operands.
type Comparison struct {
	Base
	Left     Node
	Operator string
	Right    Node
}

func (n *Comparison) Kind() Kind       { return KindComparison }
func (n *Comparison) Children() []Node { return []Node{n.Left, n.Right} }

// Ternary is a conditional expression. IfFalse is nil when the source
// omits the false branch.
type Ternary struct {
	Base
	Condition Node
	IfTrue    Node
	IfFalse   Node
}

func (n *Ternary) Kind() Kind { return KindTernary }

func (n *Ternary) Children() []Node {
	children := []Node{n.Condition, n.IfTrue}
	if n.IfFalse != nil {
		children = append(children, n.IfFalse)
	}
	return children
}

// FunctionCall calls a builtin M function.
type FunctionCall struct {
	Base
	Name      string
	Arguments []Node
}

func (n *FunctionCall) Kind() Kind       { return KindFunctionCall }
func (n *FunctionCall) Children() []Node { return n.Arguments }

// Interval is the closed integer range [First, Last].
type Interval struct {
	Base
	First int
	Last  int
}

func (n *Interval) Kind() Kind       { return KindInterval }
func (n *Interval) Children() []Node { return nil }

// EnumerationValues is a fixed ordered list of values.
type EnumerationValues struct {
	Base
	Values []Value
}

func (n *EnumerationValues) Kind() Kind       { return KindEnumerationValues }
func (n *EnumerationValues) Children() []Node { return nil }

// Membership tests whether Subject belongs to an enumeration, given either
// by name (EnumerationName) or inline (Enumeration).
type Membership struct {
	Base
	Subject         Node
	EnumerationName string
	Enumeration     Node
	Negative        bool
}

func (n *Membership) Kind() Kind { return KindMembership }

func (n *Membership) Children() []Node {
	if n.Enumeration != nil {
		return []Node{n.Subject, n.Enumeration}
	}
	return []Node{n.Subject}
}

// LoopVariable binds Name to the union of the values of its enumerations.
type LoopVariable struct {
	Base
	Name         string
	Enumerations []Node
}

func (n *LoopVariable) Kind() Kind       { return KindLoopVariable }
func (n *LoopVariable) Children() []Node { return n.Enumerations }

// LoopExpression expands Expression once per combination of its loop
// variables.
type LoopExpression struct {
	Base
	LoopVariables []*LoopVariable
	Expression    Node
}

func (n *LoopExpression) Kind() Kind { return KindLoopExpression }

func (n *LoopExpression) Children() []Node {
	children := make([]Node, 0, len(n.LoopVariables)+1)
	for _, lv := range n.LoopVariables {
		children = append(children, lv)
	}
	return append(children, n.Expression)
}

// Parenthesized wraps a single expression.
type Parenthesized struct {
	Base
	Expression Node
}

func (n *Parenthesized) Kind() Kind       { return KindExpression }
func (n *Parenthesized) Children() []Node { return []Node{n.Expression} }

// VariableConst declares a named constant.
type VariableConst struct {
	Base
	Name   string
	Value  Value
	Fields map[string]any // Raw JSON object
}

func (n *VariableConst) Kind() Kind       { return KindVariableConst }
func (n *VariableConst) Children() []Node { return nil }

// VariableDecl declares an input (saisie) or computed (calculee) variable.
type VariableDecl struct {
	Base
	Type   Kind // KindVariableInput or KindVariableComputed
	Name   string
	Tags   []string       // attributes.tags
	Fields map[string]any // Raw JSON object
}

func (n *VariableDecl) Kind() Kind       { return n.Type }
func (n *VariableDecl) Children() []Node { return nil }

// Formula defines the computed variable Name.
type Formula struct {
	Base
	Name       string
	Expression Node
}

func (n *Formula) Kind() Kind       { return KindFormula }
func (n *Formula) Children() []Node { return []Node{n.Expression} }

// LoopedFormula defines one formula per combination of its loop variables.
type LoopedFormula struct {
	Base
	LoopVariables []*LoopVariable
	Formula       *Formula
}

func (n *LoopedFormula) Kind() Kind { return KindLoopedFormula }

func (n *LoopedFormula) Children() []Node {
	children := make([]Node, 0, len(n.LoopVariables)+1)
	for _, lv := range n.LoopVariables {
		children = append(children, lv)
	}
	return append(children, n.Formula)
}

// RuleGroup is a named rule (regle) holding formulas, restricted to a set
// of applications.
type RuleGroup struct {
	Base
	Name         string
	Applications []string
	Formulas     []Node // *Formula or *LoopedFormula
}

func (n *RuleGroup) Kind() Kind       { return KindRuleGroup }
func (n *RuleGroup) Children() []Node { return n.Formulas }

// Verification is a named verification rule (verif).
type Verification struct {
	Base
	Name         string
	Applications []string
	Conditions   []*VerificationCondition
}

func (n *Verification) Kind() Kind { return KindVerification }

func (n *Verification) Children() []Node {
	children := make([]Node, len(n.Conditions))
	for i, c := range n.Conditions {
		children[i] = c
	}
	return children
}

// VerificationCondition raises Error when Expression holds.
type VerificationCondition struct {
	Base
	Expression Node
	Error      string
}

func (n *VerificationCondition) Kind() Kind       { return KindVerificationCondition }
func (n *VerificationCondition) Children() []Node { return []Node{n.Expression} }
