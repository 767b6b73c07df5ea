// Package mlang translates M-language programs, given as JSON ASTs, into
// Python statements.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: the closed set of AST node kinds, cloning and folds
// - parser: JSON AST decoding with node paths
// - symbols: the Symbol Table of variable definitions
// - translate: node dispatch, expression rendering, loop unrolling and
// dependency extraction
// - formula: the Formula Registry and the dependency ordering
// - errors: located errors with suggestions
//
// # Basic Usage
//
//	table, err := mlang.Symbols(variables, "tgvH.json")
//	if err != nil {
//		return err
//	}
//	registry, err := mlang.TranslateBytes(table, rules, "chap-1.json", "batch")
//	if err != nil {
//		return err
//	}
//	program, err := mlang.Order(table, registry, nil)
//
// The build package runs the same steps over a whole AST directory.
package mlang
