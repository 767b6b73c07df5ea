// Package formula holds the Formula Registry and the Topological Orderer.
//
// The registry maps every sanitized formula name to its generated source
// and its dependency set, and collects verification records. The orderer
// turns the dependency sets of writable formulas into an evaluation order:
// a formula comes after every writable formula it depends on.
//
// Ordering runs in passes over the remaining formulas, sorted by name. A
// pass that places nothing while formulas remain means the remaining
// formulas hold a cycle; Order then fails with a dependency_cycle error
// naming one concrete cycle.
//
// Formulas that are ordered but have no generated source (a writable
// variable referenced but never defined) resolve to a zero placeholder
// and an unresolved_formula_source diagnostic.
package formula
