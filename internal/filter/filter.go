package filter

// Expression is a compiled filter expression.
//
// It is immutable once returned by Builder.Result or Parse, so it can be evaluated concurrently by any
// number of goroutines.
type Expression[I any] struct {
	root Node[I]
}

// Evaluate returns true if the given input matches this expression.
func (e *Expression[I]) Evaluate(input I) bool {
	return e.root.Eval(input)
}

// Root returns the root node of the expression tree.
func (e *Expression[I]) Root() Node[I] {
	return e.root
}

// Walk visits all nodes of the expression tree in pre-order. Children of a node are skipped if fn returns false.
func (e *Expression[I]) Walk(fn func(Node[I]) bool) {
	walk(e.root, fn)
}

// Leaves returns the values of all leaves in the order they appear in the expression.
func (e *Expression[I]) Leaves() []Matcher[I] {
	var leaves []Matcher[I]
	e.Walk(func(node Node[I]) bool {
		if leaf, ok := node.(*Leaf[I]); ok {
			leaves = append(leaves, leaf.value)
		}

		return true
	})

	return leaves
}

func (e *Expression[I]) String() string {
	return e.root.String()
}

func walk[I any](node Node[I], fn func(Node[I]) bool) {
	if !fn(node) {
		return
	}

	switch n := node.(type) {
	case *And[I]:
		for _, child := range n.children {
			walk(child, fn)
		}
	case *Or[I]:
		for _, child := range n.children {
			walk(child, fn)
		}
	}
}
