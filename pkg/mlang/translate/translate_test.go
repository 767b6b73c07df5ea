package translate

import (
	"encoding/json"
	"reflect"
	"strconv"
	"testing"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

func sym(name string) *ast.Symbol { return &ast.Symbol{Value: name} }

func integer(v string) *ast.Number {
	return &ast.Number{Type: ast.KindInteger, Value: json.Number(v)}
}

func infix(kind ast.Kind, first ast.Node, rest ...any) *ast.Infix {
	n := &ast.Infix{Type: kind, Operands: []ast.Node{first}}
	for i := 0; i < len(rest); i += 2 {
		n.Operators = append(n.Operators, rest[i].(string))
		n.Operands = append(n.Operands, rest[i+1].(ast.Node))
	}
	return n
}

func cmp(left ast.Node, op string, right ast.Node) *ast.Comparison {
	return &ast.Comparison{Left: left, Operator: op, Right: right}
}

func values(vs ...string) *ast.EnumerationValues {
	e := &ast.EnumerationValues{}
	for _, v := range vs {
		if _, err := strconv.Atoi(v); err == nil {
			e.Values = append(e.Values, ast.NumberValue(v))
		} else {
			e.Values = append(e.Values, ast.StringValue(v))
		}
	}
	return e
}

func loopVar(name string, enums ...ast.Node) *ast.LoopVariable {
	return &ast.LoopVariable{Name: name, Enumerations: enums}
}

func newTestTranslator(t *testing.T) (*Translator, *formula.Registry) {
	t.Helper()
	table, err := symbols.FromNodes([]ast.Node{
		&ast.VariableDecl{Type: ast.KindVariableInput, Name: "1AJ"},
		&ast.VariableDecl{Type: ast.KindVariableInput, Name: "SAL"},
		&ast.VariableDecl{Type: ast.KindVariableComputed, Name: "X"},
		&ast.VariableDecl{Type: ast.KindVariableComputed, Name: "2AB"},
	})
	if err != nil {
		t.Fatalf("FromNodes() error = %v", err)
	}
	registry := formula.NewRegistry()
	return New(table, registry), registry
}

func TestTranslator_Expressions(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"integer", integer("42"), "42"},
		{"float", &ast.Number{Type: ast.KindFloat, Value: "0.25"}, "0.25"},
		{"string", &ast.String{Value: "abc"}, "abc"},
		{"computed symbol", sym("X"), "X"},
		{"sanitized symbol", sym("3VV"), "_3VV"},
		{"input symbol keeps raw name", sym("1AJ"), "saisies.get('1AJ', 0)"},
		{"sum", infix(ast.KindSum, sym("a"), "+", sym("b"), "-", integer("1")), "a + b - 1"},
		{"boolean connectives", infix(ast.KindBoolean, sym("a"), "et", sym("b"), "ou", sym("c")), "a and b or c"},
		{"equality", cmp(sym("a"), "=", integer("1")), "a == 1"},
		{"other comparison", cmp(sym("a"), ">=", integer("1")), "a >= 1"},
		{
			"ternary without false branch",
			&ast.Ternary{Condition: cmp(sym("b"), ">", integer("1")), IfTrue: sym("a")},
			"a if (b > 1) else 0",
		},
		{
			"ternary with composite branches",
			&ast.Ternary{
				Condition: sym("c"),
				IfTrue:    infix(ast.KindSum, sym("a"), "+", integer("1")),
				IfFalse:   infix(ast.KindProduct, sym("a"), "*", integer("2")),
			},
			"(a + 1) if c else (a * 2)",
		},
		{"known function", &ast.FunctionCall{Name: "positif", Arguments: []ast.Node{sym("a")}}, "is_positive(a)"},
		{"function arguments", &ast.FunctionCall{Name: "max", Arguments: []ast.Node{sym("a"), integer("0")}}, "max(a, 0)"},
		{"interval", &ast.Interval{First: 1, Last: 3}, "range(1, 4)"},
		{"enumeration values", values("1", "2"), "(1, 2)"},
		{"single string value", values("V"), "('V',)"},
		{"membership", &ast.Membership{Subject: sym("a"), EnumerationName: "ZONES"}, "a in ZONES"},
		{
			"negative membership",
			&ast.Membership{Subject: infix(ast.KindSum, sym("a"), "+", sym("b")), Enumeration: values("1", "2"), Negative: true},
			"(a + b) not in (1, 2)",
		},
		{"loop variable", loopVar("i", values("1"), &ast.Interval{First: 3, Last: 4}), "i in (1,) or i in range(3, 5)"},
		{"parenthesized", &ast.Parenthesized{Expression: infix(ast.KindSum, sym("a"), "+", sym("b"))}, "(a + b)"},
		{"parenthesized atom", &ast.Parenthesized{Expression: sym("a")}, "a"},
		{"variable const", &ast.VariableConst{Name: "PLAF", Value: ast.NumberValue("1500")}, "PLAF = 1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTranslator(t)
			got, inline, err := tr.Translate(tt.node)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if !inline {
				t.Error("Translate() inline = false, want true")
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslator_Precedence(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"sum inside product", infix(ast.KindProduct, infix(ast.KindSum, sym("a"), "+", sym("b")), "*", sym("c")), "(a + b) * c"},
		{"product inside sum", infix(ast.KindSum, sym("a"), "+", infix(ast.KindProduct, sym("b"), "*", sym("c"))), "a + b * c"},
		{"left nested sum", infix(ast.KindSum, infix(ast.KindSum, sym("a"), "-", sym("b")), "-", sym("c")), "a - b - c"},
		{"right nested sum", infix(ast.KindSum, sym("a"), "-", infix(ast.KindSum, sym("b"), "+", sym("c"))), "a - (b + c)"},
		{"nested boolean", infix(ast.KindBoolean, sym("a"), "et", infix(ast.KindBoolean, sym("b"), "ou", sym("c"))), "a and (b or c)"},
		{"comparisons in boolean", infix(ast.KindBoolean, cmp(sym("a"), ">", integer("0")), "ou", cmp(sym("b"), "=", integer("1"))), "a > 0 or b == 1"},
		{"sum in comparison", cmp(infix(ast.KindSum, sym("a"), "+", sym("b")), "<", sym("c")), "a + b < c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTranslator(t)
			got, _, err := tr.Translate(tt.node)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranslator_LiteralRoundTrip(t *testing.T) {
	for _, lit := range []string{"0", "42", "-7", "0.5", "1e3", "123456789012"} {
		t.Run(lit, func(t *testing.T) {
			tr, _ := newTestTranslator(t)
			got, _, err := tr.Translate(&ast.Number{Type: ast.KindFloat, Value: json.Number(lit)})
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			want, _ := strconv.ParseFloat(lit, 64)
			parsed, err := strconv.ParseFloat(got, 64)
			if err != nil || parsed != want {
				t.Errorf("Translate() = %q, does not parse back to %v", got, want)
			}
		})
	}
}

func TestTranslator_EndToEndFormula(t *testing.T) {
	tr, registry := newTestTranslator(t)
	node := &ast.Formula{Name: "2AB", Expression: infix(ast.KindSum, sym("X"), "+", integer("1"))}

	text, inline, err := tr.Translate(node)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if inline || text != "" {
		t.Errorf("Translate() = (%q, %v), want no inline text", text, inline)
	}

	rec, ok := registry.Lookup("_2AB")
	if !ok {
		t.Fatal("formula _2AB not registered")
	}
	if rec.Source != "_2AB = X + 1" {
		t.Errorf("Source = %q, want %q", rec.Source, "_2AB = X + 1")
	}
	if got := rec.Dependencies.Sorted(); !reflect.DeepEqual(got, []string{"X"}) {
		t.Errorf("Dependencies = %v, want [X]", got)
	}
}

func TestTranslator_FormulaDependencies(t *testing.T) {
	loop := &ast.LoopExpression{
		LoopVariables: []*ast.LoopVariable{loopVar("i", values("1", "2", "3"))},
		Expression:    sym("Ci"),
	}
	tests := []struct {
		name       string
		expr       ast.Node
		wantSource string
		wantDeps   []string
	}{
		{
			name:       "plain symbols",
			expr:       infix(ast.KindSum, sym("b"), "+", sym("c")),
			wantSource: "a = b + c",
			wantDeps:   []string{"b", "c"},
		},
		{
			name:       "input symbols are dependencies too",
			expr:       infix(ast.KindSum, sym("SAL"), "+", sym("1AJ")),
			wantSource: "a = saisies.get('SAL', 0) + saisies.get('1AJ', 0)",
			wantDeps:   []string{"SAL", "_1AJ"},
		},
		{
			name:       "loop expression reports its unrolled symbols",
			expr:       infix(ast.KindSum, sym("b"), "+", &ast.FunctionCall{Name: "somme", Arguments: []ast.Node{loop}}),
			wantSource: "a = b + sum([C1, C2, C3])",
			wantDeps:   []string{"C1", "C2", "C3", "b"},
		},
		{
			name: "nested loop reports only fully spliced symbols",
			expr: &ast.LoopExpression{
				LoopVariables: []*ast.LoopVariable{loopVar("i", values("1", "2"))},
				Expression: &ast.LoopExpression{
					LoopVariables: []*ast.LoopVariable{loopVar("j", values("3", "4"))},
					Expression:    sym("Yij"),
				},
			},
			wantSource: "a = [[Y13, Y14], [Y23, Y24]]",
			wantDeps:   []string{"Y13", "Y14", "Y23", "Y24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, registry := newTestTranslator(t)
			if _, _, err := tr.Translate(&ast.Formula{Name: "a", Expression: tt.expr}); err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			rec, _ := registry.Lookup("a")
			if rec.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", rec.Source, tt.wantSource)
			}
			if got := rec.Dependencies.Sorted(); !reflect.DeepEqual(got, tt.wantDeps) {
				t.Errorf("Dependencies = %v, want %v", got, tt.wantDeps)
			}
		})
	}
}

func TestTranslator_DependenciesSkipLoopBodies(t *testing.T) {
	tr, _ := newTestTranslator(t)
	expr := infix(ast.KindSum, sym("a"), "+", &ast.LoopExpression{
		LoopVariables: []*ast.LoopVariable{loopVar("i", values("1", "2"))},
		Expression:    sym("Xi"),
	})
	deps, err := tr.Dependencies(expr)
	if err != nil {
		t.Fatalf("Dependencies() error = %v", err)
	}
	if got := deps.Sorted(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Dependencies() = %v, want [a]", got)
	}
}

func TestTranslator_LoopedFormula(t *testing.T) {
	tr, registry := newTestTranslator(t)
	group := &ast.RuleGroup{
		Name:         "regle 1",
		Applications: []string{"batch"},
		Formulas: []ast.Node{
			&ast.LoopedFormula{
				LoopVariables: []*ast.LoopVariable{loopVar("i", values("V", "C"))},
				Formula:       &ast.Formula{Name: "TOTi", Expression: infix(ast.KindSum, sym("Ai"), "+", sym("Bi"))},
			},
		},
	}
	if _, _, err := tr.Translate(group); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	want := map[string]string{
		"TOTV": "TOTV = AV + BV",
		"TOTC": "TOTC = AC + BC",
	}
	if registry.Len() != len(want) {
		t.Fatalf("registry holds %d formulas, want %d", registry.Len(), len(want))
	}
	for name, source := range want {
		if got, _ := registry.Source(name); got != source {
			t.Errorf("Source(%s) = %q, want %q", name, got, source)
		}
	}
	if stats := tr.Stats(); stats.Formulas != 2 || stats.Clones != 2 {
		t.Errorf("Stats = %+v, want 2 formulas from 2 clones", stats)
	}
}

func TestTranslator_Verification(t *testing.T) {
	tr, registry := newTestTranslator(t)
	verif := &ast.Verification{
		Name:         "verif 1",
		Applications: []string{"batch"},
		Conditions: []*ast.VerificationCondition{
			{Expression: cmp(sym("X"), ">", sym("1AJ")), Error: "A01"},
			{Expression: cmp(sym("Y"), "=", integer("0")), Error: "A02"},
		},
	}
	if _, _, err := tr.Translate(verif); err != nil {
		t.Fatalf("Translate() error = %v", err)
	}

	verifs := registry.Verifications()
	if len(verifs) != 1 {
		t.Fatalf("Verifications() = %d, want 1", len(verifs))
	}
	want := []formula.Condition{
		{Source: "X > saisies.get('1AJ', 0)", Error: "A01"},
		{Source: "Y == 0", Error: "A02"},
	}
	if !reflect.DeepEqual(verifs[0].Conditions, want) {
		t.Errorf("Conditions = %+v, want %+v", verifs[0].Conditions, want)
	}
	if got := verifs[0].Dependencies.Sorted(); !reflect.DeepEqual(got, []string{"X", "Y", "_1AJ"}) {
		t.Errorf("Dependencies = %v", got)
	}
}

func TestTranslator_UnknownFunction(t *testing.T) {
	tr, _ := newTestTranslator(t)
	call := &ast.FunctionCall{Name: "arr", Arguments: []ast.Node{sym("a")}}
	for i := 0; i < 2; i++ {
		got, _, err := tr.Translate(call)
		if err != nil {
			t.Fatalf("Translate() error = %v", err)
		}
		if got != "arr(a)" {
			t.Errorf("Translate() = %q, want arr(a)", got)
		}
	}
	if n := tr.Stats().UnknownFunctions["arr"]; n != 2 {
		t.Errorf("UnknownFunctions[arr] = %d, want 2", n)
	}

	extended := New(symbols.NewTable(), formula.NewRegistry()).
		WithFunctions(NewFunctionTable(map[string]string{"arr": "round_half_up"}))
	if got, _, _ := extended.Translate(call); got != "round_half_up(a)" {
		t.Errorf("Translate() with extended table = %q", got)
	}
}

func TestTranslator_Errors(t *testing.T) {
	deep := ast.Node(sym("a"))
	for i := 0; i < 10; i++ {
		deep = &ast.Parenthesized{Expression: deep}
	}

	tests := []struct {
		name    string
		node    ast.Node
		errType mlangErrors.ErrorType
	}{
		{"depth exceeded", deep, mlangErrors.ErrorTypeDepthExceeded},
		{"declaration has no rule", &ast.VariableDecl{Type: ast.KindVariableComputed, Name: "X"}, mlangErrors.ErrorTypeUnknownNodeKind},
		{"reversed interval", &ast.Interval{First: 3, Last: 1}, mlangErrors.ErrorTypeMalformedEnumeration},
		{
			"loop over a non-enumeration",
			&ast.LoopExpression{LoopVariables: []*ast.LoopVariable{loopVar("i", sym("E"))}, Expression: sym("Xi")},
			mlangErrors.ErrorTypeMalformedEnumeration,
		},
		{
			"loop variable without name",
			&ast.LoopExpression{LoopVariables: []*ast.LoopVariable{loopVar("", values("1", "2"))}, Expression: sym("X")},
			mlangErrors.ErrorTypeMalformedEnumeration,
		},
		{
			"looped formula without enumerations",
			&ast.LoopedFormula{LoopVariables: []*ast.LoopVariable{loopVar("i")}, Formula: &ast.Formula{Name: "Ai", Expression: sym("Xi")}},
			mlangErrors.ErrorTypeMalformedEnumeration,
		},
		{
			"unrolling above the clone cap",
			&ast.LoopExpression{
				LoopVariables: []*ast.LoopVariable{
					loopVar("i", &ast.Interval{First: 1, Last: 3}),
					loopVar("j", &ast.Interval{First: 1, Last: 3}),
				},
				Expression: sym("Xij"),
			},
			mlangErrors.ErrorTypeCloneLimit,
		},
		{
			"sanitized names collide",
			&ast.Formula{Name: "A", Expression: infix(ast.KindSum, sym("4B"), "+", sym("_4B"))},
			mlangErrors.ErrorTypeNameCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTranslator(t)
			tr.WithMaxDepth(5).WithMaxClones(5)
			_, _, err := tr.Translate(tt.node)
			if !mlangErrors.Is(err, tt.errType) {
				t.Errorf("Translate() error = %v, want %s", err, tt.errType)
			}
		})
	}
}
