package ast

import "fmt"

// Location identifies a node inside a JSON AST file.
// Path is a JSON path relative to the top-level array, for example
// "[3].formulas[0].expression.operands[1]".
type Location struct {
	File string // Name of the JSON file
	Path string // Node path inside the file
}

// String returns a human-readable representation of the location.
// Format: "file:path"
func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.Path == "" {
		return l.File
	}
	return fmt.Sprintf("%s:%s", l.File, l.Path)
}

// IsValid returns true if the location names a file.
func (l Location) IsValid() bool {
	return l.File != ""
}

// Index returns the location of the i-th element of an array held at l.
func (l Location) Index(i int) Location {
	return Location{File: l.File, Path: fmt.Sprintf("%s[%d]", l.Path, i)}
}

// Field returns the location of the named field of the object held at l.
func (l Location) Field(name string) Location {
	if name == "" {
		return l
	}
	if l.Path == "" {
		return Location{File: l.File, Path: name}
	}
	return Location{File: l.File, Path: l.Path + "." + name}
}
