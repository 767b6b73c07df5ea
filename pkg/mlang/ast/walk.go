package ast

// Fold traverses the tree rooted at node depth-first and calls f for every
// node of the target kind, threading acc through the calls. A matching node
// is not descended into. Subtrees rooted at a node of the skip kind are
// ignored entirely; pass an empty skip kind to visit everything.
func Fold[T any](node Node, target, skip Kind, acc T, f func(T, Node) T) T {
	if node == nil {
		return acc
	}
	kind := node.Kind()
	if kind == target {
		return f(acc, node)
	}
	if skip != "" && kind == skip {
		return acc
	}
	for _, child := range node.Children() {
		acc = Fold(child, target, skip, acc, f)
	}
	return acc
}

// Find returns the nodes of the target kind found in node, in depth-first
// order, skipping subtrees of the skip kind.
func Find(node Node, target, skip Kind) []Node {
	return Fold(node, target, skip, []Node(nil), func(found []Node, n Node) []Node {
		return append(found, n)
	})
}

// Inspect traverses the tree rooted at node depth-first, calling f for each
// node. If f returns false, the children of that node are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	for _, child := range node.Children() {
		Inspect(child, f)
	}
}

// Symbols returns the raw names of the symbols referenced under node,
// skipping subtrees of the skip kind.
func Symbols(node Node, skip Kind) []string {
	return Fold(node, KindSymbol, skip, []string(nil), func(names []string, n Node) []string {
		return append(names, n.(*Symbol).Value)
	})
}
