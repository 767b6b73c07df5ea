package parser

import (
	"encoding/json"
	"fmt"
	"strconv"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// object is a JSON node split into its fields.
type object struct {
	kind   ast.Kind
	fields map[string]json.RawMessage
	raw    json.RawMessage
	loc    ast.Location
}

func newObject(raw json.RawMessage, loc ast.Location) (*object, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		e := mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, loc, "expected a JSON object node").
			WithContext(mlangErrors.NodeContext(raw))
		e.Err = err
		return nil, e
	}
	o := &object{fields: fields, raw: raw, loc: loc}
	kind, err := o.str("type")
	if err != nil {
		return nil, err
	}
	o.kind = ast.Kind(kind)
	return o, nil
}

func (o *object) base() ast.Base {
	return ast.Base{Loc: o.loc}
}

func (o *object) malformed(field, format string, args ...any) *mlangErrors.Error {
	return mlangErrors.New(mlangErrors.ErrorTypeMalformedNode, o.loc.Field(field),
		"%s node: %s", o.kind, fmt.Sprintf(format, args...)).
		WithContext(mlangErrors.NodeContext(o.raw))
}

func (o *object) has(field string) bool {
	raw, ok := o.fields[field]
	return ok && string(raw) != "null"
}

func (o *object) required(field string) (json.RawMessage, error) {
	raw, ok := o.fields[field]
	if !ok || string(raw) == "null" {
		return nil, o.malformed(field, "missing '%s'", field)
	}
	return raw, nil
}

func (o *object) str(field string) (string, error) {
	raw, err := o.required(field)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", o.malformed(field, "'%s' must be a string", field)
	}
	return s, nil
}

func (o *object) optionalStr(field string) (string, error) {
	if !o.has(field) {
		return "", nil
	}
	return o.str(field)
}

func (o *object) strs(field string) ([]string, error) {
	if !o.has(field) {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(o.fields[field], &out); err != nil {
		return nil, o.malformed(field, "'%s' must be a list of strings", field)
	}
	return out, nil
}

func (o *object) boolean(field string) (bool, error) {
	if !o.has(field) {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(o.fields[field], &b); err != nil {
		return false, o.malformed(field, "'%s' must be a boolean", field)
	}
	return b, nil
}

func (o *object) number(field string) (json.Number, error) {
	raw, err := o.required(field)
	if err != nil {
		return "", err
	}
	var v any
	if err := decodeAny(raw, &v); err != nil {
		return "", o.malformed(field, "'%s' must be a number", field)
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", o.malformed(field, "'%s' must be a number", field)
	}
	return n, nil
}

func (o *object) node(field string) (ast.Node, error) {
	raw, err := o.required(field)
	if err != nil {
		return nil, err
	}
	return DecodeNode(raw, o.loc.Field(field))
}

func (o *object) optionalNode(field string) (ast.Node, error) {
	if !o.has(field) {
		return nil, nil
	}
	return o.node(field)
}

func (o *object) nodes(field string) ([]ast.Node, error) {
	raw, err := o.required(field)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, o.malformed(field, "'%s' must be a list of nodes", field)
	}
	loc := o.loc.Field(field)
	out := make([]ast.Node, 0, len(raws))
	for i, r := range raws {
		n, err := DecodeNode(r, loc.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (o *object) loopVariables(field string) ([]*ast.LoopVariable, error) {
	nodes, err := o.nodes(field)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, o.malformed(field, "'%s' must not be empty", field)
	}
	out := make([]*ast.LoopVariable, len(nodes))
	for i, n := range nodes {
		lv, ok := n.(*ast.LoopVariable)
		if !ok {
			return nil, o.malformed(field, "expected loop_variable, got %s", n.Kind())
		}
		out[i] = lv
	}
	return out, nil
}

func (o *object) rawFields() (map[string]any, error) {
	var fields map[string]any
	if err := decodeAny(o.raw, &fields); err != nil {
		return nil, o.malformed("", "%v", err)
	}
	return fields, nil
}

// build dispatches on the node discriminant.
func (o *object) build() (ast.Node, error) {
	switch o.kind {
	case ast.KindInteger, ast.KindFloat:
		value, err := o.number("value")
		if err != nil {
			return nil, err
		}
		return &ast.Number{Base: o.base(), Type: o.kind, Value: value}, nil

	case ast.KindString:
		value, err := o.str("value")
		if err != nil {
			return nil, err
		}
		return &ast.String{Base: o.base(), Value: value}, nil

	case ast.KindSymbol:
		value, err := o.str("value")
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, o.malformed("value", "symbol name is empty")
		}
		return &ast.Symbol{Base: o.base(), Value: value}, nil

	case ast.KindBoolean, ast.KindProduct, ast.KindSum:
		return o.buildInfix()

	case ast.KindComparison:
		return o.buildComparison()

	case ast.KindTernary:
		return o.buildTernary()

	case ast.KindFunctionCall:
		name, err := o.str("name")
		if err != nil {
			return nil, err
		}
		args, err := o.nodes("arguments")
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Base: o.base(), Name: name, Arguments: args}, nil

	case ast.KindInterval:
		return o.buildInterval()

	case ast.KindEnumerationValues:
		raw, err := o.required("values")
		if err != nil {
			return nil, o.malformedEnumeration("values", "missing 'values'")
		}
		values, err := o.enumerationValues("values", raw)
		if err != nil {
			return nil, err
		}
		return &ast.EnumerationValues{Base: o.base(), Values: values}, nil

	case ast.KindMembership:
		return o.buildMembership()

	case ast.KindLoopVariable:
		name, err := o.str("name")
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, o.malformedEnumeration("name", "loop variable name is empty")
		}
		enums, err := o.nodes("enumerations")
		if err != nil {
			return nil, err
		}
		if len(enums) == 0 {
			return nil, o.malformedEnumeration("enumerations", "loop variable %q has no enumerations", name)
		}
		return &ast.LoopVariable{Base: o.base(), Name: name, Enumerations: enums}, nil

	case ast.KindLoopExpression:
		lvs, err := o.loopVariables("loop_variables")
		if err != nil {
			return nil, err
		}
		expr, err := o.node("expression")
		if err != nil {
			return nil, err
		}
		return &ast.LoopExpression{Base: o.base(), LoopVariables: lvs, Expression: expr}, nil

	case ast.KindExpression:
		expr, err := o.node("expression")
		if err != nil {
			return nil, err
		}
		return &ast.Parenthesized{Base: o.base(), Expression: expr}, nil

	case ast.KindVariableConst:
		return o.buildVariableConst()

	case ast.KindVariableInput, ast.KindVariableComputed:
		return o.buildVariableDecl()

	case ast.KindFormula:
		return o.buildFormula()

	case ast.KindLoopedFormula:
		lvs, err := o.loopVariables("loop_variables")
		if err != nil {
			return nil, err
		}
		n, err := o.node("formula")
		if err != nil {
			return nil, err
		}
		f, ok := n.(*ast.Formula)
		if !ok {
			return nil, o.malformed("formula", "expected formula, got %s", n.Kind())
		}
		return &ast.LoopedFormula{Base: o.base(), LoopVariables: lvs, Formula: f}, nil

	case ast.KindRuleGroup:
		return o.buildRuleGroup()

	case ast.KindVerification:
		return o.buildVerification()

	case ast.KindVerificationCondition:
		expr, err := o.node("expression")
		if err != nil {
			return nil, err
		}
		errName, err := o.optionalStr("error")
		if err != nil {
			return nil, err
		}
		return &ast.VerificationCondition{Base: o.base(), Expression: expr, Error: errName}, nil
	}

	return nil, mlangErrors.New(mlangErrors.ErrorTypeUnknownNodeKind, o.loc,
		"no translation rule for node kind %q", o.kind).
		WithContext(mlangErrors.NodeContext(o.raw)).
		WithSuggestion(mlangErrors.SuggestKind(string(o.kind)))
}

func (o *object) buildInfix() (ast.Node, error) {
	operands, err := o.nodes("operands")
	if err != nil {
		return nil, err
	}
	operators, err := o.strs("operators")
	if err != nil {
		return nil, err
	}
	if len(operands) != len(operators)+1 {
		return nil, o.malformed("operands", "%d operands for %d operators", len(operands), len(operators))
	}
	return &ast.Infix{Base: o.base(), Type: o.kind, Operands: operands, Operators: operators}, nil
}

func (o *object) buildComparison() (ast.Node, error) {
	left, err := o.node("left_operand")
	if err != nil {
		return nil, err
	}
	operator, err := o.str("operator")
	if err != nil {
		return nil, err
	}
	right, err := o.node("right_operand")
	if err != nil {
		return nil, err
	}
	return &ast.Comparison{Base: o.base(), Left: left, Operator: operator, Right: right}, nil
}

func (o *object) buildTernary() (ast.Node, error) {
	cond, err := o.node("condition")
	if err != nil {
		return nil, err
	}
	ifTrue, err := o.node("value_if_true")
	if err != nil {
		return nil, err
	}
	ifFalse, err := o.optionalNode("value_if_false")
	if err != nil {
		return nil, err
	}
	return &ast.Ternary{Base: o.base(), Condition: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil
}

func (o *object) malformedEnumeration(field, format string, args ...any) *mlangErrors.Error {
	return mlangErrors.New(mlangErrors.ErrorTypeMalformedEnumeration, o.loc.Field(field),
		"%s node: %s", o.kind, fmt.Sprintf(format, args...)).
		WithContext(mlangErrors.NodeContext(o.raw))
}

func (o *object) buildInterval() (ast.Node, error) {
	bound := func(field string) (int, error) {
		n, err := o.number(field)
		if err != nil {
			return 0, o.malformedEnumeration(field, "'%s' must be an integer", field)
		}
		v, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, o.malformedEnumeration(field, "'%s' must be an integer, got %s", field, n)
		}
		return v, nil
	}
	first, err := bound("first")
	if err != nil {
		return nil, err
	}
	last, err := bound("last")
	if err != nil {
		return nil, err
	}
	return &ast.Interval{Base: o.base(), First: first, Last: last}, nil
}

func (o *object) enumerationValues(field string, raw json.RawMessage) ([]ast.Value, error) {
	var items []any
	if err := decodeAny(raw, &items); err != nil {
		return nil, o.malformedEnumeration(field, "'%s' must be a list of values", field)
	}
	values := make([]ast.Value, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case json.Number:
			values[i] = ast.NumberValue(v.String())
		case string:
			values[i] = ast.StringValue(v)
		default:
			return nil, o.malformedEnumeration(field, "value %d has unsupported type %T", i, item)
		}
	}
	return values, nil
}

func (o *object) buildMembership() (ast.Node, error) {
	subject, err := o.node("expression")
	if err != nil {
		return nil, err
	}
	negative, err := o.boolean("negative_form")
	if err != nil {
		return nil, err
	}
	m := &ast.Membership{Base: o.base(), Subject: subject, Negative: negative}

	raw, err := o.required("enumeration")
	if err != nil {
		return nil, err
	}
	var probe any
	if err := decodeAny(raw, &probe); err != nil {
		return nil, o.malformedEnumeration("enumeration", "%v", err)
	}
	switch v := probe.(type) {
	case string:
		m.EnumerationName = v
	case []any:
		values, err := o.enumerationValues("enumeration", raw)
		if err != nil {
			return nil, err
		}
		m.Enumeration = &ast.EnumerationValues{Base: ast.Base{Loc: o.loc.Field("enumeration")}, Values: values}
	case map[string]any:
		n, err := o.node("enumeration")
		if err != nil {
			return nil, err
		}
		m.Enumeration = n
	default:
		return nil, o.malformedEnumeration("enumeration", "unsupported enumeration %s", raw)
	}
	return m, nil
}

func (o *object) buildVariableConst() (ast.Node, error) {
	name, err := o.str("name")
	if err != nil {
		return nil, err
	}
	raw, err := o.required("value")
	if err != nil {
		return nil, err
	}
	var v any
	if err := decodeAny(raw, &v); err != nil {
		return nil, o.malformed("value", "%v", err)
	}
	var value ast.Value
	switch t := v.(type) {
	case json.Number:
		value = ast.NumberValue(t.String())
	case string:
		value = ast.StringValue(t)
	default:
		return nil, o.malformed("value", "constant value must be a number or a string")
	}
	fields, err := o.rawFields()
	if err != nil {
		return nil, err
	}
	return &ast.VariableConst{Base: o.base(), Name: name, Value: value, Fields: fields}, nil
}

func (o *object) buildVariableDecl() (ast.Node, error) {
	name, err := o.str("name")
	if err != nil {
		return nil, err
	}
	var tags []string
	if o.has("attributes") {
		var attributes struct {
			Tags []string `json:"tags"`
		}
		if err := json.Unmarshal(o.fields["attributes"], &attributes); err != nil {
			return nil, o.malformed("attributes", "'attributes.tags' must be a list of strings")
		}
		tags = attributes.Tags
	}
	fields, err := o.rawFields()
	if err != nil {
		return nil, err
	}
	return &ast.VariableDecl{Base: o.base(), Type: o.kind, Name: name, Tags: tags, Fields: fields}, nil
}

func (o *object) buildFormula() (ast.Node, error) {
	name, err := o.str("name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, o.malformed("name", "formula name is empty")
	}
	expr, err := o.node("expression")
	if err != nil {
		return nil, err
	}
	return &ast.Formula{Base: o.base(), Name: name, Expression: expr}, nil
}

func (o *object) buildRuleGroup() (ast.Node, error) {
	name, err := o.optionalStr("name")
	if err != nil {
		return nil, err
	}
	applications, err := o.strs("applications")
	if err != nil {
		return nil, err
	}
	formulas, err := o.nodes("formulas")
	if err != nil {
		return nil, err
	}
	for i, f := range formulas {
		if k := f.Kind(); k != ast.KindFormula && k != ast.KindLoopedFormula {
			return nil, o.malformed("formulas", "entry %d: expected formula or pour_formula, got %s", i, k)
		}
	}
	return &ast.RuleGroup{Base: o.base(), Name: name, Applications: applications, Formulas: formulas}, nil
}

func (o *object) buildVerification() (ast.Node, error) {
	name, err := o.optionalStr("name")
	if err != nil {
		return nil, err
	}
	applications, err := o.strs("applications")
	if err != nil {
		return nil, err
	}
	nodes, err := o.nodes("conditions")
	if err != nil {
		return nil, err
	}
	conditions := make([]*ast.VerificationCondition, len(nodes))
	for i, n := range nodes {
		c, ok := n.(*ast.VerificationCondition)
		if !ok {
			return nil, o.malformed("conditions", "entry %d: expected verif_condition, got %s", i, n.Kind())
		}
		conditions[i] = c
	}
	return &ast.Verification{Base: o.base(), Name: name, Applications: applications, Conditions: conditions}, nil
}
