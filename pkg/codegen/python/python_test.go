package python

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "'abc'"},
		{"", "''"},
		{"it's", `"it's"`},
		{`a'b"c`, `'a\'b"c'`},
		{"a\\b", `'a\\b'`},
		{"line\nnext", `'line\nnext'`},
		{"é", "'é'"},
		{"\x01", `'\x01'`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Quote(tt.in); got != tt.want {
				t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepr(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "None"},
		{"bools", []any{true, false}, "[True, False]"},
		{"number keeps text", json.Number("1.50"), "1.50"},
		{"int", 3, "3"},
		{"strings", []string{"a", "b"}, "['a', 'b']"},
		{"sorted dict", map[string]any{"b": 1, "a": map[string]any{"x": nil}}, "{'a': {'x': None}, 'b': 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repr(tt.in); got != tt.want {
				t.Errorf("Repr() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTuple(t *testing.T) {
	if got := Tuple(nil); got != "()" {
		t.Errorf("Tuple(nil) = %s", got)
	}
	if got := Tuple([]string{"1"}); got != "(1,)" {
		t.Errorf("Tuple(1) = %s", got)
	}
	if got := Tuple([]string{"1", "'a'"}); got != "(1, 'a')" {
		t.Errorf("Tuple(1, a) = %s", got)
	}
}

func testProgram(t *testing.T) *Program {
	t.Helper()
	table := symbols.NewTable()
	plaf := ast.NumberValue("1500")
	defs := []*symbols.Definition{
		{Name: "1AJ", Kind: symbols.KindInput},
		{Name: "X", Kind: symbols.KindComputed, Tags: []string{"base"}},
		{Name: "2AB", Kind: symbols.KindComputed},
		{Name: "PLAF", Kind: symbols.KindConstant, Value: &plaf},
	}
	for _, def := range defs {
		if err := table.Add(def, ast.Location{}); err != nil {
			t.Fatalf("Add(%s) error = %v", def.Name, err)
		}
	}

	return &Program{
		Symbols: table,
		Formulas: []formula.Resolved{
			{
				Name:         "_2AB",
				Source:       "_2AB = X + saisies.get('1AJ', 0) + PLAF",
				Dependencies: formula.NewDependencySet("X", "_1AJ", "PLAF"),
			},
			{Name: "Z", Source: formula.Placeholder("Z"), Placeholder: true},
		},
		Verifications: []*formula.VerificationRecord{
			{
				Name:         "verif 1",
				Conditions:   []formula.Condition{{Source: "_2AB > PLAF", Error: "A01"}},
				Dependencies: formula.NewDependencySet("_2AB", "PLAF"),
			},
		},
	}
}

func TestRender(t *testing.T) {
	artifacts, err := Render(testProgram(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(artifacts) != 4 {
		t.Fatalf("Render() = %d artifacts, want 4", len(artifacts))
	}

	for _, a := range artifacts {
		if !strings.HasPrefix(string(a.Content), Header) {
			t.Errorf("%s does not start with the header", a.Name)
		}
	}

	tests := []struct {
		file     string
		contains []string
		excludes []string
	}{
		{
			file:     ConstantsFile,
			contains: []string{"PLAF = 1500\n"},
			excludes: []string{"X = "},
		},
		{
			file: VariablesFile,
			contains: []string{
				"variable_definition_by_name = {",
				"'_1AJ': {'kind': 'input', 'name': '1AJ'}",
				"'X': {'kind': 'computed', 'name': 'X', 'tags': ['base']}",
			},
		},
		{
			file: FormulasFile,
			contains: []string{
				"from .constants import *\n",
				"def formula__2AB(saisies, values):\n    X = values.get('X', 0)\n    _2AB = X + saisies.get('1AJ', 0) + PLAF\n    return _2AB\n",
				"def formula_Z(saisies, values):\n    Z = 0  # Formula source not found\n    return Z\n",
				"ORDERED_FORMULAS = (\n    ('_2AB', formula__2AB),\n    ('Z', formula_Z),\n)\n",
				"def compute(saisies):\n",
			},
			excludes: []string{"_1AJ = values.get", "PLAF = values.get"},
		},
		{
			file: VerificationsFile,
			contains: []string{
				"def verify(saisies, values):\n    errors = []\n",
				"    # verif 1\n    _2AB = values.get('_2AB', 0)\n    if _2AB > PLAF:\n        errors.append('A01')\n",
				"    return errors\n",
			},
		},
	}

	byName := make(map[string]string)
	for _, a := range artifacts {
		byName[a.Name] = string(a.Content)
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			content := byName[tt.file]
			for _, want := range tt.contains {
				if !strings.Contains(content, want) {
					t.Errorf("%s missing %q\n%s", tt.file, want, content)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(content, unwanted) {
					t.Errorf("%s contains %q", tt.file, unwanted)
				}
			}
		})
	}
}

func TestRender_NoSymbols(t *testing.T) {
	if _, err := Render(&Program{}); err == nil {
		t.Error("Render() without a symbol table succeeded")
	}
}

func TestEmitter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	artifacts, err := Render(testProgram(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	paths, err := NewEmitter(dir).Write(context.Background(), artifacts)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("Write() = %d paths, want 4", len(paths))
	}
	for i, path := range paths {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", path, err)
		}
		if string(got) != string(artifacts[i].Content) {
			t.Errorf("%s content differs from the rendered artifact", path)
		}
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 4 {
		t.Errorf("output directory holds %d entries, want 4 (no staging leftovers)", len(entries))
	}
}

func TestEmitter_WriteCanceled(t *testing.T) {
	dir := t.TempDir()
	previous := filepath.Join(dir, FormulasFile)
	if err := os.WriteFile(previous, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	artifacts, _ := Render(testProgram(t))
	if _, err := NewEmitter(dir).Write(ctx, artifacts); err == nil {
		t.Fatal("Write() with a canceled context succeeded")
	}

	got, _ := os.ReadFile(previous)
	if string(got) != "old" {
		t.Errorf("existing artifact was replaced: %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("output directory holds %d entries, want 1", len(entries))
	}
}

func TestEmitter_WriteRollsBackOnCommitFailure(t *testing.T) {
	dir := t.TempDir()
	constants := filepath.Join(dir, ConstantsFile)
	if err := os.WriteFile(constants, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory in place of formulas.py makes its commit fail after
	// constants.py and variables_definitions.py were renamed.
	if err := os.MkdirAll(filepath.Join(dir, FormulasFile, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(testProgram(t))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if _, err := NewEmitter(dir).Write(context.Background(), artifacts); err == nil {
		t.Fatal("Write() over a directory succeeded")
	}

	got, _ := os.ReadFile(constants)
	if string(got) != "old" {
		t.Errorf("constants.py = %q, want the previous content", got)
	}
	if _, err := os.Stat(filepath.Join(dir, VariablesFile)); !os.IsNotExist(err) {
		t.Errorf("variables_definitions.py left behind, stat error = %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("output directory holds %v, want constants.py and formulas.py only", names)
	}
}
