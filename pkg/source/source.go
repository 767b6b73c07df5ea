package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/formula"
	"calculette-hq/mtranspile/pkg/mlang/parser"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

// Category of an AST file.
type Category string

const (
	CategoryVariables     Category = "variables"
	CategoryConstants     Category = "constants"
	CategoryDependencies  Category = "dependencies"
	CategoryRules         Category = "rules"
	CategoryVerifications Category = "verifications"
)

// Set lists the files of one build. Rule and verification paths are
// sorted by file name.
type Set struct {
	Dir           string
	Revision      string // HEAD commit SHA when fetched from Git
	Variables     string
	Constants     string // empty when not configured
	Dependencies  string // empty when not configured
	Rules         []string
	Verifications []string
}

// Restrict keeps only the rule or verification file named name. The file
// must exist in the directory, even if no glob selects it.
func (s *Set) Restrict(name string) error {
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{File: name}, err,
			fmt.Sprintf("JSON file %q does not exist", path))
	}
	keep := func(paths []string) []string {
		var kept []string
		for _, p := range paths {
			if filepath.Base(p) == name {
				kept = append(kept, p)
			}
		}
		return kept
	}
	s.Rules = keep(s.Rules)
	s.Verifications = keep(s.Verifications)
	return nil
}

// Files returns every file of the set with its category.
func (s *Set) Files() map[string]Category {
	files := map[string]Category{s.Variables: CategoryVariables}
	if s.Constants != "" {
		files[s.Constants] = CategoryConstants
	}
	if s.Dependencies != "" {
		files[s.Dependencies] = CategoryDependencies
	}
	for _, p := range s.Rules {
		files[p] = CategoryRules
	}
	for _, p := range s.Verifications {
		files[p] = CategoryVerifications
	}
	return files
}

// Loader discovers and reads the JSON AST files.
type Loader struct {
	config *config.InputConfig
	parser *parser.Parser
	logger *slog.Logger
}

// NewLoader creates a loader for the given input configuration.
func NewLoader(cfg *config.InputConfig) *Loader {
	return &Loader{
		config: cfg,
		parser: parser.NewParser(),
		logger: slog.Default(),
	}
}

// WithLogger sets the logger.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// WithParser replaces the JSON AST parser.
func (l *Loader) WithParser(p *parser.Parser) *Loader {
	if p != nil {
		l.parser = p
	}
	return l
}

// Discover lists the files of dir selected by the configured names and
// globs. The variables file must exist.
func (l *Loader) Discover(ctx context.Context, dir string) (*Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{}, err, fmt.Sprintf("cannot read AST directory %q", dir))
	}
	if !info.IsDir() {
		return nil, mlangErrors.New(mlangErrors.ErrorTypeIO, ast.Location{}, "%q is not a directory", dir)
	}

	set := &Set{
		Dir:       dir,
		Variables: filepath.Join(dir, l.config.VariablesFile),
	}
	if _, err := os.Stat(set.Variables); err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{File: l.config.VariablesFile}, err,
			"variables file is missing").
			WithSuggestion("set input.variables_file to the variable definitions file")
	}
	if l.config.ConstantsFile != "" {
		set.Constants = filepath.Join(dir, l.config.ConstantsFile)
	}
	if l.config.DependenciesFile != "" {
		set.Dependencies = filepath.Join(dir, l.config.DependenciesFile)
	}

	if set.Rules, err = glob(dir, l.config.RuleGlobs); err != nil {
		return nil, err
	}
	if set.Verifications, err = glob(dir, l.config.VerificationGlobs); err != nil {
		return nil, err
	}
	l.logger.DebugContext(ctx, "AST files discovered",
		"dir", dir,
		"rules", len(set.Rules),
		"verifications", len(set.Verifications))
	return set, nil
}

// glob returns the sorted union of the files of dir matching patterns.
func glob(dir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{}, err, fmt.Sprintf("invalid glob %q", pattern))
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	slices.SortFunc(paths, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})
	return paths, nil
}

// Symbols builds the Symbol Table from the variables file, then applies
// the constants file when present.
//
// The variables file is either a JSON AST array, of which only the
// variable_* nodes are kept, or an object mapping names to metadata.
func (l *Loader) Symbols(ctx context.Context, set *Set) (*symbols.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readFile(set.Variables)
	if err != nil {
		return nil, err
	}
	fileName := filepath.Base(set.Variables)

	table := symbols.NewTable()
	if isObject(data) {
		err = table.AddMetadata(data, fileName)
	} else {
		err = l.addVariableNodes(table, data, fileName)
	}
	if err != nil {
		return nil, err
	}

	if set.Constants != "" {
		data, err := readFile(set.Constants)
		if err != nil {
			return nil, err
		}
		if err := table.AddConstants(data, filepath.Base(set.Constants)); err != nil {
			return nil, err
		}
	}

	counts := table.Counts()
	l.logger.InfoContext(ctx, "variables definitions loaded",
		"file", fileName,
		"total", counts.Total(),
		"computed", counts.Computed,
		"inputs", counts.Input,
		"constants", counts.Constant)
	return table, nil
}

func (l *Loader) addVariableNodes(table *symbols.Table, data []byte, fileName string) error {
	entries, err := l.parser.ParseBytes(data, fileName)
	if err != nil {
		return err
	}
	nodes := make([]ast.Node, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(string(entry.Type), "variable_") {
			continue
		}
		node, err := entry.Decode()
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	return table.AddNodes(nodes)
}

// Entries reads a rule or verification file and keeps the top-level
// nodes listing application. Other nodes are never decoded.
func (l *Loader) Entries(ctx context.Context, path, application string) ([]parser.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "loading AST file", "file", filepath.Base(path))
	entries, err := l.parser.Parse(path)
	if err != nil {
		return nil, err
	}
	kept := entries[:0]
	for _, entry := range entries {
		if entry.HasApplication(application) {
			kept = append(kept, entry)
		}
	}
	l.logger.DebugContext(ctx, "application filter applied",
		"file", filepath.Base(path),
		"application", application,
		"kept", len(kept),
		"skipped", len(entries)-len(kept))
	return kept, nil
}

// Dependencies reads the precomputed dependency file, a JSON object
// mapping formula names to dependency name lists. Names are sanitized.
func (l *Loader) Dependencies(ctx context.Context, set *Set) (map[string]formula.DependencySet, error) {
	if set.Dependencies == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readFile(set.Dependencies)
	if err != nil {
		return nil, err
	}
	fileName := filepath.Base(set.Dependencies)

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeMalformedNode, ast.Location{File: fileName}, err,
			"expected a JSON object mapping formula names to dependency lists")
	}
	deps := make(map[string]formula.DependencySet, len(raw))
	for name, list := range raw {
		set := formula.NewDependencySet()
		for _, dep := range list {
			set.Add(symbols.Sanitize(dep))
		}
		deps[symbols.Sanitize(name)] = set
	}
	l.logger.InfoContext(ctx, "precomputed dependencies loaded", "file", fileName, "formulas", len(deps))
	return deps, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlangErrors.Wrap(mlangErrors.ErrorTypeIO, ast.Location{File: filepath.Base(path)}, err,
			"failed to read file")
	}
	return data, nil
}

// isObject reports whether the first non-space byte of data opens a JSON
// object.
func isObject(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Fetch resolves the AST directory. With Git enabled the repository is
// synchronized first and the directory lies within the checkout.
func Fetch(ctx context.Context, cfg *config.InputConfig, logger *slog.Logger) (dir, revision string, err error) {
	if !cfg.Git.Enabled {
		return cfg.Dir, "", nil
	}
	repo, err := NewRepository(&cfg.Git)
	if err != nil {
		return "", "", err
	}
	revision, err = repo.WithLogger(logger).Sync(ctx)
	if err != nil {
		return "", "", fmt.Errorf("git source: %w", err)
	}
	return repo.Dir(), revision, nil
}
