package filter

// Matcher is implemented by every leaf value of a filter expression.
//
// Matches must be total over I and free of side effects, an Expression evaluates leaves concurrently
// and never expects them to fail. Leaves that depend on missing or invalid data have to report false.
type Matcher[I any] interface {
	Matches(input I) bool
}

// MatcherFunc allows the use of ordinary functions as Matcher.
type MatcherFunc[I any] func(input I) bool

// Matches calls f(input).
func (f MatcherFunc[I]) Matches(input I) bool {
	return f(input)
}

// Node is implemented by all the nodes of an expression tree, i.e. *Leaf, *And and *Or.
type Node[I any] interface {
	// Eval evaluates this node and all of its children against the given input.
	Eval(input I) bool

	// String returns the canonical representation of this node using '*' and '+' as operators.
	String() string

	// sealed prevents implementations outside of this package.
	sealed()
}

var (
	_ Matcher[any] = MatcherFunc[any](nil)
	_ Node[any]    = (*Leaf[any])(nil)
	_ Node[any]    = (*And[any])(nil)
	_ Node[any]    = (*Or[any])(nil)
)
