package translate

import (
	"maps"
	"sort"
)

// DefaultFunctions maps M function names to their Python names.
var DefaultFunctions = map[string]string{
	"abs":     "abs",
	"max":     "max",
	"min":     "min",
	"positif": "is_positive",
	"somme":   "sum",
}

// FunctionTable resolves M function names.
type FunctionTable struct {
	names map[string]string
}

// NewFunctionTable returns the default table extended with extra, which
// takes precedence.
func NewFunctionTable(extra map[string]string) *FunctionTable {
	names := maps.Clone(DefaultFunctions)
	maps.Copy(names, extra)
	return &FunctionTable{names: names}
}

// Resolve returns the Python name of an M function and whether it is known.
// Unknown names are returned unchanged.
func (f *FunctionTable) Resolve(name string) (string, bool) {
	if target, ok := f.names[name]; ok {
		return target, true
	}
	return name, false
}

// Names returns the known M function names, sorted.
func (f *FunctionTable) Names() []string {
	names := make([]string, 0, len(f.names))
	for name := range f.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
