// Package translate turns M AST nodes into Python source.
//
// The Translator is the node dispatcher: an exhaustive switch over the
// node types of package ast. Expression nodes return inline Python text.
// Statement nodes (formula, pour_formula, regle, verif) return no text and
// register records in a formula.Registry instead.
//
// # Expressions
//
// Symbols declared as inputs read the externally supplied mapping with a
// zero default, keyed by their raw name:
//
//	saisies.get('1AJ', 0)
//
// Every other symbol is emitted under its sanitized name. Boolean
// connectives "et" and "ou" become "and" and "or", the equality "=" becomes
// "==", and a ternary without false branch gets a literal 0 there. Known
// M functions are renamed through a function table (positif becomes
// is_positive, somme becomes sum, ...); unknown ones pass through
// unchanged and are reported in Stats.
//
// # Loops
//
// Loop expressions and pour formulas are unrolled: each loop variable
// ranges over the union of its enumerations, the variables combine by
// Cartesian product, and each combination yields a deep clone of the body
// where the first occurrence of every loop variable name is replaced by
// its value inside symbol names (and inside the formula name for pour
// formulas). The splice is textual: a loop variable "V" also matches the
// "V" of "VAL". Such ambiguous splices are kept, logged and counted.
//
// # Dependencies
//
// The dependency set of a formula is the set of sanitized symbol names of
// its expression outside loop expressions, plus the names each loop
// expression reports for its unrolled bodies.
package translate
