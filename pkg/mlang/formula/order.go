package formula

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"calculette-hq/mtranspile/pkg/mlang/ast"
	mlangErrors "calculette-hq/mtranspile/pkg/mlang/errors"
)

// Classifier tells which names are writable formulas.
// *symbols.Table implements it.
type Classifier interface {
	IsWritable(name string) bool
}

// Ordering is the result of Order.
type Ordering struct {
	Names  []string // Writable formulas in evaluation order
	Passes int      // Number of scans over the remaining formulas
}

// Orderer orders writable formulas by their dependencies.
type Orderer struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewOrderer creates an orderer restricted to the names classifier
// reports as writable.
func NewOrderer(classifier Classifier) *Orderer {
	return &Orderer{
		classifier: classifier,
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger.
func (o *Orderer) WithLogger(logger *slog.Logger) *Orderer {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// Order returns the writable formulas of deps in an order where every
// formula follows its writable dependencies. Writable names that appear
// only as dependencies are ordered too.
func (o *Orderer) Order(deps map[string]DependencySet) (*Ordering, error) {
	graph := o.writableGraph(deps)

	remaining := make([]string, 0, len(graph))
	for name := range graph {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)

	placed := make(map[string]bool, len(graph))
	result := &Ordering{Names: make([]string, 0, len(graph))}

	for len(remaining) > 0 {
		result.Passes++
		next := make([]string, 0, len(remaining))
		for _, name := range remaining {
			if allPlaced(graph[name], placed) {
				placed[name] = true
				result.Names = append(result.Names, name)
				continue
			}
			next = append(next, name)
		}

		o.logger.Debug("ordering pass done",
			"pass", result.Passes,
			"placed", len(remaining)-len(next),
			"remaining", len(next),
		)

		if len(next) == len(remaining) {
			return nil, cycleError(graph, remaining)
		}
		remaining = next
	}

	return result, nil
}

// writableGraph restricts deps to writable formulas and writable edges.
func (o *Orderer) writableGraph(deps map[string]DependencySet) map[string]DependencySet {
	graph := make(map[string]DependencySet)
	for name, set := range deps {
		if !o.classifier.IsWritable(name) {
			continue
		}
		edges := set.Filter(o.classifier.IsWritable)
		graph[name] = edges
		for dep := range edges {
			if _, ok := graph[dep]; !ok {
				graph[dep] = nil
			}
		}
	}
	return graph
}

func allPlaced(deps DependencySet, placed map[string]bool) bool {
	for dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

// cycleError reports the formulas that could not be placed, with one
// cycle found among them.
func cycleError(graph map[string]DependencySet, remaining []string) error {
	cycle := findCycle(graph, remaining)
	err := mlangErrors.New(mlangErrors.ErrorTypeDependencyCycle, ast.Location{},
		"%d formulas cannot be ordered: %s", len(remaining), strings.Join(cycle, " -> "))

	shown := remaining
	if len(shown) > 20 {
		shown = shown[:20]
	}
	context := "unordered formulas: " + strings.Join(shown, ", ")
	if len(shown) < len(remaining) {
		context += fmt.Sprintf(", ... (%d more)", len(remaining)-len(shown))
	}
	return err.WithContext(context)
}

// findCycle returns a cycle among names as a path whose first and last
// elements are equal. Every name left after a pass without progress
// depends on another left name, so a walk from any of them must loop.
func findCycle(graph map[string]DependencySet, names []string) []string {
	left := make(map[string]bool, len(names))
	for _, name := range names {
		left[name] = true
	}

	position := make(map[string]int)
	var path []string
	current := names[0]
	for {
		if i, seen := position[current]; seen {
			return append(path[i:], current)
		}
		position[current] = len(path)
		path = append(path, current)

		next := ""
		for _, dep := range graph[current].Sorted() {
			if left[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			// Unreachable for a pass without progress.
			return path
		}
		current = next
	}
}
