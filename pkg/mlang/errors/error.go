package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/ast"
)

// ErrorType categorizes the errors raised by the transpiler.
type ErrorType string

const (
	ErrorTypeUnknownNodeKind         ErrorType = "unknown_node_kind"
	ErrorTypeMalformedNode           ErrorType = "malformed_node"
	ErrorTypeMalformedEnumeration    ErrorType = "malformed_enumeration"
	ErrorTypeDepthExceeded           ErrorType = "depth_exceeded"
	ErrorTypeCloneLimit              ErrorType = "clone_limit_exceeded"
	ErrorTypeDependencyCycle         ErrorType = "dependency_cycle"
	ErrorTypeUnresolvedFormulaSource ErrorType = "unresolved_formula_source"
	ErrorTypeNameCollision           ErrorType = "name_collision"
	ErrorTypeDuplicateFormula        ErrorType = "duplicate_formula"
	ErrorTypeIO                      ErrorType = "io"
)

// IsFatal returns true if an error of this type must abort the run.
func (t ErrorType) IsFatal() bool {
	return t != ErrorTypeUnresolvedFormulaSource
}

// Error is a transpiler error with location, context and suggestion.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Offending node
	Context    string       // Offending node JSON, indented
	Suggestion string       // Suggested fix (optional)
	Err        error        // Underlying cause (optional)
}

// New creates an error of the given type.
func New(errType ErrorType, location ast.Location, format string, args ...any) *Error {
	return &Error{
		Type:     errType,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
	}
}

// Wrap creates an error of the given type around cause.
func Wrap(errType ErrorType, location ast.Location, cause error, message string) *Error {
	return &Error{
		Type:     errType,
		Message:  message,
		Location: location,
		Err:      cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s", e.Type, e.Message))
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	sb.WriteString("\n")

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		for _, line := range strings.Split(strings.TrimRight(e.Context, "\n"), "\n") {
			sb.WriteString("  | ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithContext attaches the offending node text and returns e.
func (e *Error) WithContext(context string) *Error {
	e.Context = context
	return e
}

// WithSuggestion attaches a suggestion and returns e.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// Is reports whether err, or any error it wraps or lists, has the given type.
func Is(err error, errType ErrorType) bool {
	var list *ErrorList
	if stderrors.As(err, &list) {
		return list.HasErrorType(errType)
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == errType
	}
	return false
}

// ErrorList accumulates errors instead of failing on the first one.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// Merge appends err to the list. Errors that are neither *Error nor
// *ErrorList are recorded as io errors.
func (el *ErrorList) Merge(err error) {
	if err == nil {
		return
	}
	var list *ErrorList
	if stderrors.As(err, &list) {
		el.Errors = append(el.Errors, list.Errors...)
		return
	}
	var e *Error
	if stderrors.As(err, &e) {
		el.Add(e)
		return
	}
	el.Add(&Error{Type: ErrorTypeIO, Message: err.Error()})
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if el.Count() == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the list holds at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
