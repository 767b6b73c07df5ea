package python

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

// Header starts every generated file.
const Header = "# -*- coding: utf-8 -*-\n" +
	"# flake8: noqa\n" +
	"# WARNING: This file is automatically generated by a script. Do not modify it by hand!\n"

// Artifact file names.
const (
	ConstantsFile     = "constants.py"
	VariablesFile     = "variables_definitions.py"
	FormulasFile      = "formulas.py"
	VerificationsFile = "verifications.py"
)

const indent = "    "

// Program is everything the emitter renders.
type Program struct {
	Symbols       *symbols.Table
	Formulas      []formula.Resolved // In evaluation order
	Verifications []*formula.VerificationRecord
}

// Artifact is one rendered file.
type Artifact struct {
	Name    string
	Content []byte
}

// Render renders the four artifacts of p in memory.
func Render(p *Program) ([]Artifact, error) {
	if p == nil || p.Symbols == nil {
		return nil, fmt.Errorf("program has no symbol table")
	}
	return []Artifact{
		{Name: ConstantsFile, Content: []byte(RenderConstants(p.Symbols))},
		{Name: VariablesFile, Content: []byte(RenderVariables(p.Symbols))},
		{Name: FormulasFile, Content: []byte(RenderFormulas(p.Symbols, p.Formulas))},
		{Name: VerificationsFile, Content: []byte(RenderVerifications(p.Symbols, p.Verifications))},
	}, nil
}

// RenderConstants renders one NAME = value line per constant.
func RenderConstants(table *symbols.Table) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	for _, def := range table.Constants() {
		value := "0"
		if def.Value != nil {
			value = def.Value.Text
			if def.Value.Quoted {
				value = Quote(def.Value.Text)
			}
		}
		fmt.Fprintf(&sb, "%s = %s\n", def.SanitizedName(), value)
	}
	return sb.String()
}

// RenderVariables renders the variable metadata dictionary keyed by
// sanitized name.
func RenderVariables(table *symbols.Table) string {
	byName := make(map[string]any, table.Len())
	for _, def := range table.Definitions() {
		byName[def.SanitizedName()] = metadata(def)
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	sb.WriteString("variable_definition_by_name = ")
	sb.WriteString(Repr(byName))
	sb.WriteString("\n")
	return sb.String()
}

func metadata(def *symbols.Definition) map[string]any {
	if def.Fields != nil {
		return def.Fields
	}
	m := map[string]any{
		"name": def.Name,
		"kind": string(def.Kind),
	}
	if len(def.Tags) > 0 {
		m["tags"] = def.Tags
	}
	if def.Value != nil {
		m["value"] = def.Value.Text
	}
	return m
}

// bindings returns the statements reading the computed dependencies of a
// function body from the values dictionary. Inputs are read inline and
// constants come from the star import.
func bindings(table *symbols.Table, deps formula.DependencySet, self string) []string {
	var lines []string
	for _, name := range deps.Sorted() {
		if name == self {
			continue
		}
		if def, ok := table.Lookup(name); ok && def.Kind != symbols.KindComputed {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = values.get(%s, 0)", name, Quote(name)))
	}
	return lines
}

// FunctionName returns the Python function computing formula name.
func FunctionName(name string) string {
	return "formula_" + name
}

// RenderFormulas renders one function per formula, the evaluation order
// and the compute entry point.
func RenderFormulas(table *symbols.Table, formulas []formula.Resolved) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\nfrom .constants import *\n")

	for _, f := range formulas {
		fmt.Fprintf(&sb, "\n\ndef %s(saisies, values):\n", FunctionName(f.Name))
		for _, line := range bindings(table, f.Dependencies, f.Name) {
			sb.WriteString(indent + line + "\n")
		}
		sb.WriteString(indent + f.Source + "\n")
		sb.WriteString(indent + "return " + f.Name + "\n")
	}

	sb.WriteString("\n\nORDERED_FORMULAS = (\n")
	for _, f := range formulas {
		fmt.Fprintf(&sb, "%s(%s, %s),\n", indent, Quote(f.Name), FunctionName(f.Name))
	}
	sb.WriteString(")\n")

	sb.WriteString("\n\ndef compute(saisies):\n")
	sb.WriteString(indent + "values = {}\n")
	sb.WriteString(indent + "for name, formula in ORDERED_FORMULAS:\n")
	sb.WriteString(indent + indent + "values[name] = formula(saisies, values)\n")
	sb.WriteString(indent + "return values\n")
	return sb.String()
}

// RenderVerifications renders verify, which returns the names of the
// errors whose condition holds.
func RenderVerifications(table *symbols.Table, verifs []*formula.VerificationRecord) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\nfrom .constants import *\n")
	sb.WriteString("\n\ndef verify(saisies, values):\n")
	sb.WriteString(indent + "errors = []\n")

	for _, v := range verifs {
		fmt.Fprintf(&sb, "\n%s# %s\n", indent, v.Name)
		for _, line := range bindings(table, v.Dependencies, "") {
			sb.WriteString(indent + line + "\n")
		}
		for _, cond := range v.Conditions {
			fmt.Fprintf(&sb, "%sif %s:\n", indent, cond.Source)
			fmt.Fprintf(&sb, "%s%serrors.append(%s)\n", indent, indent, Quote(cond.Error))
		}
	}

	sb.WriteString("\n" + indent + "return errors\n")
	return sb.String()
}

// Emitter writes artifacts to a directory.
type Emitter struct {
	dir    string
	logger *slog.Logger
}

// NewEmitter creates an emitter writing into dir.
func NewEmitter(dir string) *Emitter {
	return &Emitter{dir: dir, logger: slog.Default()}
}

// WithLogger sets the logger.
func (e *Emitter) WithLogger(logger *slog.Logger) *Emitter {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Write stages every artifact in a temporary file and renames them into
// place once all of them were written. When a rename fails, the artifacts
// committed before it are restored to their previous content. It returns
// the final paths.
func (e *Emitter) Write(ctx context.Context, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	staged := make([]string, 0, len(artifacts))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		tmp, err := stage(e.dir, a)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to write %s: %w", a.Name, err)
		}
		staged = append(staged, tmp)
	}

	paths := make([]string, len(artifacts))
	previous := make([]*snapshot, 0, len(artifacts))
	for i, a := range artifacts {
		paths[i] = filepath.Join(e.dir, a.Name)
		prev, err := readPrevious(paths[i])
		if err == nil {
			err = os.Rename(staged[i], paths[i])
		}
		if err != nil {
			cleanup()
			e.rollback(paths[:i], previous)
			return nil, fmt.Errorf("failed to commit %s: %w", a.Name, err)
		}
		previous = append(previous, prev)
		e.logger.Debug("artifact written", "path", paths[i], "bytes", len(a.Content))
	}
	return paths, nil
}

// snapshot is the content of an artifact replaced by a commit. A nil
// snapshot means the artifact did not exist.
type snapshot struct {
	content []byte
	mode    os.FileMode
}

func readPrevious(path string) (*snapshot, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &snapshot{content: content, mode: info.Mode().Perm()}, nil
}

// rollback restores the artifacts committed before a failed rename.
func (e *Emitter) rollback(paths []string, previous []*snapshot) {
	for i, path := range paths {
		var err error
		if previous[i] == nil {
			err = os.Remove(path)
		} else {
			err = os.WriteFile(path, previous[i].content, previous[i].mode)
		}
		if err != nil {
			e.logger.Error("failed to restore artifact", "path", path, "error", err)
		}
	}
}

func stage(dir string, a Artifact) (string, error) {
	f, err := os.CreateTemp(dir, "."+a.Name+"-*")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(a.Content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
