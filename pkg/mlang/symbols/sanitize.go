package symbols

import (
	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Sanitize returns name as a valid Python identifier.
// It is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		return "_" + name
	}
	return name
}

// Sanitizer sanitizes names and remembers which raw name produced each
// sanitized one.
type Sanitizer struct {
	raw map[string]string
}

// NewSanitizer creates an empty sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{raw: make(map[string]string)}
}

// Sanitize returns the sanitized form of name, or a name_collision error
// when another raw name already produced the same identifier.
func (s *Sanitizer) Sanitize(name string, loc ast.Location) (string, error) {
	sanitized := Sanitize(name)
	if previous, ok := s.raw[sanitized]; ok && previous != name {
		return "", mlangErrors.New(mlangErrors.ErrorTypeNameCollision, loc,
			"names %q and %q both sanitize to %q", previous, name, sanitized)
	}
	s.raw[sanitized] = name
	return sanitized, nil
}

// Raw returns the raw name that produced sanitized.
func (s *Sanitizer) Raw(sanitized string) (string, bool) {
	name, ok := s.raw[sanitized]
	return name, ok
}
