// Package errors provides the error types raised while decoding,
// translating and ordering M rules.
//
// Every error carries a category, a message, the location of the offending
// node and, when one can be computed, a suggestion.
//
// # Error Types
//
// ErrorTypeUnknownNodeKind: a node discriminant has no translation rule
// (fatal, the node JSON is attached as context)
//
// ErrorTypeMalformedNode: a known node has missing or ill-typed fields
//
// ErrorTypeMalformedEnumeration: an enumeration or interval has an
// unrecognized shape, or a loop variable has no name or no values
//
// ErrorTypeDepthExceeded: nesting exceeds the configured depth cap
//
// ErrorTypeCloneLimit: a loop unrolls into more clones than the
// configured cap
//
// ErrorTypeDependencyCycle: the writable formula graph is cyclic
//
// ErrorTypeUnresolvedFormulaSource: an ordered formula has no generated
// source (recovered with a placeholder, reported as a diagnostic only)
//
// ErrorTypeNameCollision: two raw names sanitize to the same identifier
//
// ErrorTypeDuplicateFormula: a formula is defined twice in strict mode
//
// ErrorTypeIO: file I/O errors
//
// # Basic Usage
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeMalformedNode, "missing 'operands'", loc)
//	if errList.HasErrors() {
//	    return errList.ToError()
//	}
//
// Use errors.As or Is to test for a category:
//
//	if errors.Is(err, errors.ErrorTypeDependencyCycle) { ... }
package errors
