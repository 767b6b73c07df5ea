// Package ast defines the abstract syntax tree of the M rule language as it
// is exported to JSON.
//
// Every node of the JSON export is an object carrying a "type" discriminant.
// This package models the set of known discriminants as a closed sum type:
// the Node interface can only be implemented inside this package, so a type
// switch over the concrete node types is exhaustive and an unknown
// discriminant can only appear while decoding (see package parser).
//
// # Node Families
//
// Expressions: Number, String, Symbol, Infix, Comparison, Ternary,
// FunctionCall, Membership, Parenthesized, LoopExpression.
//
// Enumerations: Interval, EnumerationValues and the LoopVariable binding
// that references them.
//
// Statements: Formula, LoopedFormula, RuleGroup, Verification and
// VerificationCondition.
//
// Declarations: VariableDecl (inputs and computed variables) and
// VariableConst.
//
// # Traversal
//
// Nodes expose their children generically, which lets Fold, Find and
// Inspect walk any tree without knowing every kind:
//
//	deps := ast.Find(formula.Expression, ast.KindSymbol, ast.KindLoopExpression)
//
// Clone returns a deep copy of a subtree; it is the only sanctioned way to
// obtain a mutable tree, for instance before splicing loop values into
// symbol names.
package ast
