package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"calculette-hq/mtranspile/pkg/config"
	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
	"calculette-hq/mtranspile/pkg/mlang/symbols"
)

func testInput(dir string) *config.InputConfig {
	cfg := config.Default().Input
	cfg.Dir = dir
	return &cfg
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestDiscover(t *testing.T) {
	loader := NewLoader(testInput("testdata/ast"))

	set, err := loader.Discover(context.Background(), "testdata/ast")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if got, want := baseNames(set.Rules), []string{"chap-1.json", "chap-2.json", "res-ser1.json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Rules = %v, want %v", got, want)
	}
	if got, want := baseNames(set.Verifications), []string{"coc1.json"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Verifications = %v, want %v", got, want)
	}
	if filepath.Base(set.Variables) != "tgvH.json" {
		t.Errorf("Variables = %q", set.Variables)
	}
	if set.Constants != "" || set.Dependencies != "" {
		t.Errorf("optional files set without configuration: %q %q", set.Constants, set.Dependencies)
	}

	files := set.Files()
	if files[set.Variables] != CategoryVariables || len(files) != 5 {
		t.Errorf("Files() = %v", files)
	}
}

func TestDiscover_Errors(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"missing directory", "testdata/nope"},
		{"not a directory", "testdata/ast/chap-1.json"},
		{"missing variables file", t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(testInput(tt.dir)).Discover(context.Background(), tt.dir)
			if !mlangErrors.Is(err, mlangErrors.ErrorTypeIO) {
				t.Errorf("Discover() error = %v, want io error", err)
			}
		})
	}
}

func TestDiscover_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader(testInput("testdata/ast")).Discover(ctx, "testdata/ast"); err == nil {
		t.Error("Discover() succeeded with a canceled context")
	}
}

func TestSet_Restrict(t *testing.T) {
	tests := []struct {
		name              string
		file              string
		wantRules         []string
		wantVerifications []string
		wantErr           bool
	}{
		{name: "rule file", file: "res-ser1.json", wantRules: []string{"res-ser1.json"}},
		{name: "verification file", file: "coc1.json", wantVerifications: []string{"coc1.json"}},
		{name: "existing file outside the globs", file: "notes.txt"},
		{name: "missing file", file: "chap-9.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewLoader(testInput("testdata/ast")).Discover(context.Background(), "testdata/ast")
			if err != nil {
				t.Fatal(err)
			}
			err = set.Restrict(tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Restrict() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := baseNames(set.Rules); len(got) != len(tt.wantRules) || (len(got) > 0 && !reflect.DeepEqual(got, tt.wantRules)) {
				t.Errorf("Rules = %v, want %v", got, tt.wantRules)
			}
			if got := baseNames(set.Verifications); len(got) != len(tt.wantVerifications) || (len(got) > 0 && !reflect.DeepEqual(got, tt.wantVerifications)) {
				t.Errorf("Verifications = %v, want %v", got, tt.wantVerifications)
			}
		})
	}
}

func TestSymbols_NodeArray(t *testing.T) {
	cfg := testInput("testdata/ast")
	cfg.ConstantsFile = "constants.json"
	loader := NewLoader(cfg)

	set, err := loader.Discover(context.Background(), "testdata/ast")
	if err != nil {
		t.Fatal(err)
	}
	table, err := loader.Symbols(context.Background(), set)
	if err != nil {
		t.Fatalf("Symbols() error = %v", err)
	}

	if !table.IsInput("1AJ") {
		t.Error("1AJ not an input")
	}
	if !table.IsWritable("2AB") {
		t.Error("2AB not writable")
	}
	if _, ok := table.Lookup("ignored"); ok {
		t.Error("non-variable node loaded into the table")
	}

	plaf, ok := table.Lookup("PLAF")
	if !ok || plaf.Kind != symbols.KindConstant || plaf.Value.Text != "2000" {
		t.Errorf("PLAF = %+v, want constant 2000 from the constants file", plaf)
	}
	if _, ok := table.Lookup("TAUX"); !ok {
		t.Error("TAUX from the constants file missing")
	}
	if got := table.Counts(); got.Input != 1 || got.Computed != 4 || got.Constant != 2 {
		t.Errorf("Counts() = %+v", got)
	}
}

func TestSymbols_Metadata(t *testing.T) {
	loader := NewLoader(testInput("testdata/metadata"))
	set, err := loader.Discover(context.Background(), "testdata/metadata")
	if err != nil {
		t.Fatal(err)
	}
	table, err := loader.Symbols(context.Background(), set)
	if err != nil {
		t.Fatalf("Symbols() error = %v", err)
	}
	if table.Len() != 3 || !table.IsInput("1AJ") || !table.IsWritable("X") {
		t.Errorf("unexpected table: %v", table.Names())
	}
}

func TestEntries_ApplicationFilter(t *testing.T) {
	loader := NewLoader(testInput("testdata/ast"))
	path := filepath.Join("testdata", "ast", "chap-1.json")

	tests := []struct {
		application string
		want        []string
	}{
		{"batch", []string{"regle 101"}},
		{"iliad", []string{"regle 101", "regle 102"}},
		{"pro", nil},
	}
	for _, tt := range tests {
		t.Run(tt.application, func(t *testing.T) {
			entries, err := loader.Entries(context.Background(), path, tt.application)
			if err != nil {
				t.Fatalf("Entries() error = %v", err)
			}
			var names []string
			for _, e := range entries {
				if e.Type != ast.KindRuleGroup {
					t.Errorf("entry type = %s", e.Type)
				}
				names = append(names, e.Name)
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Errorf("entries = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestDependencies(t *testing.T) {
	cfg := testInput("testdata/ast")
	loader := NewLoader(cfg)
	set, err := loader.Discover(context.Background(), "testdata/ast")
	if err != nil {
		t.Fatal(err)
	}

	deps, err := loader.Dependencies(context.Background(), set)
	if err != nil || deps != nil {
		t.Fatalf("Dependencies() without file = %v, %v", deps, err)
	}

	set.Dependencies = filepath.Join("testdata", "ast", "deps.json")
	deps, err = loader.Dependencies(context.Background(), set)
	if err != nil {
		t.Fatalf("Dependencies() error = %v", err)
	}
	got, ok := deps["_2AB"]
	if !ok {
		t.Fatalf("dependencies not keyed by sanitized name: %v", deps)
	}
	if want := []string{"X", "_1AJ"}; !reflect.DeepEqual(got.Sorted(), want) {
		t.Errorf("deps = %v, want %v", got.Sorted(), want)
	}
}

func TestDependencies_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deps.json")
	if err := os.WriteFile(path, []byte(`["A"]`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewLoader(testInput(dir)).Dependencies(context.Background(), &Set{Dir: dir, Dependencies: path})
	if !mlangErrors.Is(err, mlangErrors.ErrorTypeMalformedNode) {
		t.Errorf("error = %v, want malformed_node", err)
	}
}

func TestFetch_LocalDirectory(t *testing.T) {
	dir, revision, err := Fetch(context.Background(), testInput("testdata/ast"), nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if dir != "testdata/ast" || revision != "" {
		t.Errorf("Fetch() = %q, %q", dir, revision)
	}
}
