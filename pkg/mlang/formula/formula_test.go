package formula

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// writableSet is a Classifier over a fixed set of names.
type writableSet map[string]bool

func (w writableSet) IsWritable(name string) bool { return w[name] }

func writable(names ...string) writableSet {
	w := make(writableSet)
	for _, name := range names {
		w[name] = true
	}
	return w
}

func TestOrderer_Order(t *testing.T) {
	tests := []struct {
		name     string
		writable writableSet
		deps     map[string]DependencySet
		want     []string
	}{
		{
			name:     "dependency first",
			writable: writable("A", "B"),
			deps: map[string]DependencySet{
				"A": NewDependencySet("B"),
				"B": NewDependencySet(),
			},
			want: []string{"B", "A"},
		},
		{
			name:     "non-writable dependencies do not gate",
			writable: writable("A"),
			deps: map[string]DependencySet{
				"A": NewDependencySet("INPUT", "BASE", "UNKNOWN"),
			},
			want: []string{"A"},
		},
		{
			name:     "non-writable formulas are dropped",
			writable: writable("A"),
			deps: map[string]DependencySet{
				"A":    NewDependencySet(),
				"BASE": NewDependencySet("A"),
			},
			want: []string{"A"},
		},
		{
			name:     "writable dependency without formula is ordered",
			writable: writable("A", "MISSING"),
			deps: map[string]DependencySet{
				"A": NewDependencySet("MISSING"),
			},
			want: []string{"MISSING", "A"},
		},
		{
			name:     "later candidates see earlier placements within a pass",
			writable: writable("A", "B", "C"),
			deps: map[string]DependencySet{
				"A": NewDependencySet(),
				"B": NewDependencySet("A"),
				"C": NewDependencySet("B"),
			},
			want: []string{"A", "B", "C"},
		},
		{
			name:     "reverse chain takes several passes",
			writable: writable("A", "B", "C"),
			deps: map[string]DependencySet{
				"A": NewDependencySet("B"),
				"B": NewDependencySet("C"),
				"C": NewDependencySet(),
			},
			want: []string{"C", "B", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewOrderer(tt.writable).Order(tt.deps)
			if err != nil {
				t.Fatalf("Order() error = %v", err)
			}
			if !reflect.DeepEqual(got.Names, tt.want) {
				t.Errorf("Order() = %v, want %v", got.Names, tt.want)
			}
		})
	}
}

func TestOrderer_Passes(t *testing.T) {
	got, err := NewOrderer(writable("A", "B", "C")).Order(map[string]DependencySet{
		"A": NewDependencySet("B"),
		"B": NewDependencySet("C"),
		"C": NewDependencySet(),
	})
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	if got.Passes != 3 {
		t.Errorf("Passes = %d, want 3", got.Passes)
	}
}

func TestOrderer_Cycle(t *testing.T) {
	tests := []struct {
		name      string
		deps      map[string]DependencySet
		wantCycle string
	}{
		{
			name: "two formulas",
			deps: map[string]DependencySet{
				"A": NewDependencySet("B"),
				"B": NewDependencySet("A"),
			},
			wantCycle: "A -> B -> A",
		},
		{
			name: "self reference",
			deps: map[string]DependencySet{
				"A": NewDependencySet("A"),
			},
			wantCycle: "A -> A",
		},
		{
			name: "cycle behind a dependent",
			deps: map[string]DependencySet{
				"A": NewDependencySet("B"),
				"B": NewDependencySet("C"),
				"C": NewDependencySet("B"),
				"D": NewDependencySet(),
			},
			wantCycle: "B -> C -> B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrderer(writable("A", "B", "C", "D")).Order(tt.deps)
			if !mlangErrors.Is(err, mlangErrors.ErrorTypeDependencyCycle) {
				t.Fatalf("Order() error = %v, want dependency_cycle", err)
			}
			if !strings.Contains(err.Error(), tt.wantCycle) {
				t.Errorf("Order() error = %q, want cycle %q", err.Error(), tt.wantCycle)
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := NewRegistry().WithLogger(logger)
	if err := r.Register(&Record{Name: "A", Source: "A = 1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&Record{Name: "A", Source: "A = 2"}); err != nil {
		t.Fatalf("Register() duplicate error = %v", err)
	}
	if src, _ := r.Source("A"); src != "A = 2" {
		t.Errorf("Source(A) = %q, want last definition", src)
	}
	if r.Duplicates() != 1 {
		t.Errorf("Duplicates() = %d, want 1", r.Duplicates())
	}
	if !strings.Contains(logs.String(), "formula redefined") {
		t.Errorf("expected a duplicate warning, got %q", logs.String())
	}

	strict := NewRegistry().WithStrict(true)
	_ = strict.Register(&Record{Name: "A", Source: "A = 1"})
	err := strict.Register(&Record{Name: "A", Source: "A = 2", Location: ast.Location{File: "chap-2.json"}})
	if !mlangErrors.Is(err, mlangErrors.ErrorTypeDuplicateFormula) {
		t.Errorf("Register() error = %v, want duplicate_formula", err)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(&Record{Name: "A", Source: "A = B + 1", Dependencies: NewDependencySet("B")})
	r.SetDependencies("A", NewDependencySet("B", "C"))

	resolved, diags := r.Resolve([]string{"B", "A"})
	if len(resolved) != 2 {
		t.Fatalf("Resolve() = %d entries, want 2", len(resolved))
	}
	if !resolved[0].Placeholder || resolved[0].Source != "B = 0  # Formula source not found" {
		t.Errorf("Resolve()[0] = %+v, want placeholder", resolved[0])
	}
	if resolved[1].Placeholder || resolved[1].Source != "A = B + 1" {
		t.Errorf("Resolve()[1] = %+v", resolved[1])
	}
	if !reflect.DeepEqual(resolved[1].Dependencies.Sorted(), []string{"B", "C"}) {
		t.Errorf("dependencies = %v, want override [B C]", resolved[1].Dependencies.Sorted())
	}
	if diags.Count() != 1 || !diags.HasErrorType(mlangErrors.ErrorTypeUnresolvedFormulaSource) {
		t.Errorf("diagnostics = %v", diags)
	}

	deps := r.Dependencies()
	if !deps["A"].Has("C") {
		t.Errorf("Dependencies()[A] = %v, want override", deps["A"].Sorted())
	}
}

func TestDependencySet_JSON(t *testing.T) {
	data, err := json.Marshal(NewDependencySet("b", "a"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["a","b"]` {
		t.Errorf("Marshal() = %s, want sorted array", data)
	}

	var s DependencySet
	if err := json.Unmarshal([]byte(`["x","y","x"]`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(s) != 2 || !s.Has("x") {
		t.Errorf("Unmarshal() = %v", s.Sorted())
	}
}
