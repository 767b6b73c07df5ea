// Package symbols holds the Symbol Table: the classification of every
// variable of the M program as an input (saisie), a computed variable
// (calculee) or a constant, together with its tags.
//
// Names are stored under their sanitized form. Sanitization makes a raw M
// name a valid Python identifier: a name starting with a digit gets a
// leading underscore, every other name is kept as is. The Table checks that
// sanitization stays injective over every name it has seen, and reports a
// name_collision error otherwise.
//
// A computed variable without the "base" tag is writable: it takes part in
// formula ordering.
package symbols
