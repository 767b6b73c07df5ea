package ast

import "maps"

// Clone returns a deep copy of the tree rooted at node. Fields maps of
// declarations are copied shallowly.
func Clone(node Node) Node {
	if node == nil {
		return nil
	}
	switch n := node.(type) {
	case *Number:
		c := *n
		return &c
	case *String:
		c := *n
		return &c
	case *Symbol:
		c := *n
		return &c
	case *Infix:
		c := *n
		c.Operands = cloneNodes(n.Operands)
		c.Operators = append([]string(nil), n.Operators...)
		return &c
	case *Comparison:
		c := *n
		c.Left = Clone(n.Left)
		c.Right = Clone(n.Right)
		return &c
	case *Ternary:
		c := *n
		c.Condition = Clone(n.Condition)
		c.IfTrue = Clone(n.IfTrue)
		c.IfFalse = Clone(n.IfFalse)
		return &c
	case *FunctionCall:
		c := *n
		c.Arguments = cloneNodes(n.Arguments)
		return &c
	case *Interval:
		c := *n
		return &c
	case *EnumerationValues:
		c := *n
		c.Values = append([]Value(nil), n.Values...)
		return &c
	case *Membership:
		c := *n
		c.Subject = Clone(n.Subject)
		c.Enumeration = Clone(n.Enumeration)
		return &c
	case *LoopVariable:
		return cloneLoopVariable(n)
	case *LoopExpression:
		c := *n
		c.LoopVariables = cloneLoopVariables(n.LoopVariables)
		c.Expression = Clone(n.Expression)
		return &c
	case *Parenthesized:
		c := *n
		c.Expression = Clone(n.Expression)
		return &c
	case *VariableConst:
		c := *n
		c.Fields = maps.Clone(n.Fields)
		return &c
	case *VariableDecl:
		c := *n
		c.Tags = append([]string(nil), n.Tags...)
		c.Fields = maps.Clone(n.Fields)
		return &c
	case *Formula:
		return cloneFormula(n)
	case *LoopedFormula:
		c := *n
		c.LoopVariables = cloneLoopVariables(n.LoopVariables)
		c.Formula = cloneFormula(n.Formula)
		return &c
	case *RuleGroup:
		c := *n
		c.Applications = append([]string(nil), n.Applications...)
		c.Formulas = cloneNodes(n.Formulas)
		return &c
	case *Verification:
		c := *n
		c.Applications = append([]string(nil), n.Applications...)
		c.Conditions = make([]*VerificationCondition, len(n.Conditions))
		for i, cond := range n.Conditions {
			cc := *cond
			cc.Expression = Clone(cond.Expression)
			c.Conditions[i] = &cc
		}
		return &c
	case *VerificationCondition:
		c := *n
		c.Expression = Clone(n.Expression)
		return &c
	}
	panic("ast: Clone of unexpected node type " + string(node.Kind()))
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}

func cloneFormula(n *Formula) *Formula {
	if n == nil {
		return nil
	}
	c := *n
	c.Expression = Clone(n.Expression)
	return &c
}

func cloneLoopVariable(n *LoopVariable) *LoopVariable {
	c := *n
	c.Enumerations = cloneNodes(n.Enumerations)
	return &c
}

func cloneLoopVariables(lvs []*LoopVariable) []*LoopVariable {
	if lvs == nil {
		return nil
	}
	out := make([]*LoopVariable, len(lvs))
	for i, lv := range lvs {
		out[i] = cloneLoopVariable(lv)
	}
	return out
}
