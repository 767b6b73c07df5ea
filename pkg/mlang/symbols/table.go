package symbols

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// VariableKind classifies a variable.
type VariableKind string

const (
	KindInput    VariableKind = "input"
	KindComputed VariableKind = "computed"
	KindConstant VariableKind = "constant"
)

// TagBase marks computed variables that are not ordered as formulas.
const TagBase = "base"

// ParseVariableKind accepts both the short kind names and the M node kinds.
func ParseVariableKind(s string) (VariableKind, error) {
	switch s {
	case string(KindInput), string(ast.KindVariableInput):
		return KindInput, nil
	case string(KindComputed), string(ast.KindVariableComputed):
		return KindComputed, nil
	case string(KindConstant), string(ast.KindVariableConst):
		return KindConstant, nil
	default:
		return "", fmt.Errorf("unknown variable kind %q", s)
	}
}

// Definition describes one variable.
type Definition struct {
	Name   string         `json:"name"`             // Raw M name
	Kind   VariableKind   `json:"kind"`             // input, computed or constant
	Tags   []string       `json:"tags,omitempty"`   // attributes.tags
	Value  *ast.Value     `json:"value,omitempty"`  // Constant value
	Fields map[string]any `json:"fields,omitempty"` // Source metadata, emitted as is
}

// HasTag returns true if the definition carries tag.
func (d *Definition) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// SanitizedName returns the identifier used in generated code.
func (d *Definition) SanitizedName() string {
	return Sanitize(d.Name)
}

// IsWritable returns true for computed variables without the base tag.
func (d *Definition) IsWritable() bool {
	return d.Kind == KindComputed && !d.HasTag(TagBase)
}

// Counts summarizes a table.
type Counts struct {
	Input    int
	Computed int
	Constant int
}

// Total returns the number of definitions.
func (c Counts) Total() int {
	return c.Input + c.Computed + c.Constant
}

// Table maps sanitized names to definitions.
type Table struct {
	defs      map[string]*Definition
	sanitizer *Sanitizer
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		defs:      make(map[string]*Definition),
		sanitizer: NewSanitizer(),
	}
}

// Add inserts def, replacing any definition with the same raw name.
func (t *Table) Add(def *Definition, loc ast.Location) error {
	key, err := t.sanitizer.Sanitize(def.Name, loc)
	if err != nil {
		return err
	}
	t.defs[key] = def
	return nil
}

// Sanitize sanitizes a name referenced by the program and checks it
// against every name seen so far.
func (t *Table) Sanitize(name string, loc ast.Location) (string, error) {
	return t.sanitizer.Sanitize(name, loc)
}

// Lookup returns the definition of name, raw or sanitized.
func (t *Table) Lookup(name string) (*Definition, bool) {
	def, ok := t.defs[Sanitize(name)]
	return def, ok
}

// IsInput returns true if name is declared as an input variable.
func (t *Table) IsInput(name string) bool {
	def, ok := t.Lookup(name)
	return ok && def.Kind == KindInput
}

// IsWritable returns true if name is declared as a writable variable.
// Undeclared names are not writable.
func (t *Table) IsWritable(name string) bool {
	def, ok := t.Lookup(name)
	return ok && def.IsWritable()
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	return len(t.defs)
}

// Names returns the sanitized names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.defs))
	for name := range t.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every definition, sorted by sanitized name.
func (t *Table) Definitions() []*Definition {
	names := t.Names()
	defs := make([]*Definition, len(names))
	for i, name := range names {
		defs[i] = t.defs[name]
	}
	return defs
}

// Constants returns the constant definitions, sorted by raw name.
func (t *Table) Constants() []*Definition {
	var consts []*Definition
	for _, def := range t.defs {
		if def.Kind == KindConstant {
			consts = append(consts, def)
		}
	}
	sort.Slice(consts, func(i, j int) bool { return consts[i].Name < consts[j].Name })
	return consts
}

// Counts returns the number of definitions per kind.
func (t *Table) Counts() Counts {
	var c Counts
	for _, def := range t.defs {
		switch def.Kind {
		case KindInput:
			c.Input++
		case KindComputed:
			c.Computed++
		case KindConstant:
			c.Constant++
		}
	}
	return c
}

// FromNodes builds a table from the variable declarations found in nodes.
// Other nodes are ignored.
func FromNodes(nodes []ast.Node) (*Table, error) {
	t := NewTable()
	if err := t.AddNodes(nodes); err != nil {
		return nil, err
	}
	return t, nil
}

// AddNodes adds the variable declarations found in nodes.
func (t *Table) AddNodes(nodes []ast.Node) error {
	for _, node := range nodes {
		var def *Definition
		switch n := node.(type) {
		case *ast.VariableDecl:
			kind := KindComputed
			if n.Type == ast.KindVariableInput {
				kind = KindInput
			}
			def = &Definition{Name: n.Name, Kind: kind, Tags: n.Tags, Fields: n.Fields}
		case *ast.VariableConst:
			value := n.Value
			def = &Definition{Name: n.Name, Kind: KindConstant, Value: &value, Fields: n.Fields}
		default:
			continue
		}
		if err := t.Add(def, node.Location()); err != nil {
			return err
		}
	}
	return nil
}

// metadataEntry is one entry of a variable metadata object.
type metadataEntry struct {
	Kind  string          `json:"kind"`
	Tags  []string        `json:"tags"`
	Value json.RawMessage `json:"value"`
}

// AddMetadata adds definitions from a JSON object mapping variable name to
// {kind, tags, value}.
func (t *Table) AddMetadata(data []byte, fileName string) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, ast.Location{File: fileName}, err,
			"expected a JSON object mapping variable names to metadata")
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		loc := ast.Location{File: fileName, Path: name}
		var entry metadataEntry
		if err := json.Unmarshal(entries[name], &entry); err != nil {
			return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid variable metadata")
		}
		kind, err := ParseVariableKind(entry.Kind)
		if err != nil {
			return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid variable metadata")
		}
		var fields map[string]any
		if err := decodeNumbers(entries[name], &fields); err != nil {
			return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid variable metadata")
		}
		fields["name"] = name
		def := &Definition{Name: name, Kind: kind, Tags: entry.Tags, Fields: fields}
		if len(entry.Value) > 0 && string(entry.Value) != "null" {
			value, err := parseValue(entry.Value)
			if err != nil {
				return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid constant value")
			}
			def.Value = &value
		}
		if err := t.Add(def, loc); err != nil {
			return err
		}
	}
	return nil
}

// AddConstants adds or replaces constants from a JSON object mapping
// constant name to numeric value.
func (t *Table) AddConstants(data []byte, fileName string) error {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, ast.Location{File: fileName}, err,
			"expected a JSON object mapping constant names to values")
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		loc := ast.Location{File: fileName, Path: name}
		value, err := parseValue(values[name])
		if err != nil {
			return mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, loc, err, "invalid constant value")
		}
		def := &Definition{
			Name:  name,
			Kind:  KindConstant,
			Value: &value,
			Fields: map[string]any{
				"type":  string(ast.KindVariableConst),
				"name":  name,
				"value": json.Number(value.Text),
			},
		}
		if value.Quoted {
			def.Fields["value"] = value.Text
		}
		if err := t.Add(def, loc); err != nil {
			return err
		}
	}
	return nil
}

func parseValue(raw json.RawMessage) (ast.Value, error) {
	var v any
	if err := decodeNumbers(raw, &v); err != nil {
		return ast.Value{}, err
	}
	switch t := v.(type) {
	case json.Number:
		return ast.NumberValue(t.String()), nil
	case string:
		return ast.StringValue(t), nil
	default:
		return ast.Value{}, fmt.Errorf("value must be a number or a string, got %s", raw)
	}
}

func decodeNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// FromDefinitions rebuilds a table from saved definitions.
func FromDefinitions(defs []*Definition) (*Table, error) {
	t := NewTable()
	for _, def := range defs {
		if err := t.Add(def, ast.Location{}); err != nil {
			return nil, err
		}
	}
	return t, nil
}
