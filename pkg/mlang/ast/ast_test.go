package ast

import (
	"reflect"
	"testing"
)

func sym(name string) *Symbol { return &Symbol{Value: name} }

func sum(operands ...Node) *Infix {
	ops := make([]string, len(operands)-1)
	for i := range ops {
		ops[i] = "+"
	}
	return &Infix{Type: KindSum, Operands: operands, Operators: ops}
}

func TestFind(t *testing.T) {
	loop := &LoopExpression{
		LoopVariables: []*LoopVariable{{
			Name:         "i",
			Enumerations: []Node{&EnumerationValues{Values: []Value{NumberValue("1")}}},
		}},
		Expression: sym("Ci"),
	}
	expr := sum(sym("a"), &FunctionCall{Name: "somme", Arguments: []Node{loop}}, &Parenthesized{Expression: sym("b")})

	tests := []struct {
		name string
		skip Kind
		want []string
	}{
		{"skip loop bodies", KindLoopExpression, []string{"a", "b"}},
		{"visit everything", "", []string{"a", "Ci", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Symbols(expr, tt.skip); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Symbols() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := len(Find(expr, KindFunctionCall, "")); got != 1 {
		t.Errorf("Find(function_call) = %d nodes, want 1", got)
	}
}

func TestFold_TargetNotDescended(t *testing.T) {
	outer := &Parenthesized{Expression: &Parenthesized{Expression: sym("x")}}
	count := Fold(outer, KindExpression, "", 0, func(n int, _ Node) int { return n + 1 })
	if count != 1 {
		t.Errorf("Fold() = %d, want 1", count)
	}
}

func TestInspect(t *testing.T) {
	expr := &Ternary{Condition: sym("c"), IfTrue: sym("t")}
	var kinds []Kind
	Inspect(expr, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	want := []Kind{KindTernary, KindSymbol, KindSymbol}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Inspect() visited %v, want %v", kinds, want)
	}
}

func TestClone_Independent(t *testing.T) {
	original := &LoopedFormula{
		LoopVariables: []*LoopVariable{{Name: "i", Enumerations: []Node{&Interval{First: 1, Last: 2}}}},
		Formula: &Formula{
			Name:       "Xi",
			Expression: sum(sym("Ai"), &Number{Type: KindInteger, Value: "1"}),
		},
	}

	c := Clone(original).(*LoopedFormula)
	c.Formula.Name = "X1"
	c.Formula.Expression.(*Infix).Operands[0].(*Symbol).Value = "A1"
	c.LoopVariables[0].Enumerations[0].(*Interval).Last = 9

	if original.Formula.Name != "Xi" {
		t.Errorf("original name mutated to %q", original.Formula.Name)
	}
	if got := original.Formula.Expression.(*Infix).Operands[0].(*Symbol).Value; got != "Ai" {
		t.Errorf("original symbol mutated to %q", got)
	}
	if got := original.LoopVariables[0].Enumerations[0].(*Interval).Last; got != 2 {
		t.Errorf("original interval mutated to %d", got)
	}
}

func TestClone_NilOptional(t *testing.T) {
	c := Clone(&Ternary{Condition: sym("c"), IfTrue: sym("t")}).(*Ternary)
	if c.IfFalse != nil {
		t.Errorf("IfFalse = %v, want nil", c.IfFalse)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind      Kind
		known     bool
		atomic    bool
		statement bool
	}{
		{KindSymbol, true, true, false},
		{KindFunctionCall, true, true, false},
		{KindSum, true, false, false},
		{KindTernary, true, false, false},
		{KindRuleGroup, true, false, true},
		{KindLoopedFormula, true, false, true},
		{"modulo", false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.IsKnown(); got != tt.known {
				t.Errorf("IsKnown() = %v, want %v", got, tt.known)
			}
			if got := tt.kind.IsAtomic(); got != tt.atomic {
				t.Errorf("IsAtomic() = %v, want %v", got, tt.atomic)
			}
			if got := tt.kind.IsStatement(); got != tt.statement {
				t.Errorf("IsStatement() = %v, want %v", got, tt.statement)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	loc := Location{File: "chap-2.json"}.Index(3).Field("formulas").Index(0)
	if got := loc.String(); got != "chap-2.json:[3].formulas[0]" {
		t.Errorf("String() = %q", got)
	}
	if (Location{}).IsValid() {
		t.Error("empty location should be invalid")
	}
	if got := (Location{}).String(); got != "<unknown>" {
		t.Errorf("String() = %q, want <unknown>", got)
	}
}
