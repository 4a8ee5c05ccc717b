package filter

// group holds the parsing state of a single bracket nesting level.
type group[I any] struct {
	// terms are the already finished operands of the OR chain of this level.
	terms []Node[I]
	// chain is the AND chain currently being built, it becomes a single term on the next '+' or at the end.
	chain []Node[I]
	// operand is true if the last event of this level was a value, so that an operator may follow.
	operand bool
	// operator is true if the last event of this level was an operator still waiting for its right operand.
	operator bool
}

// add appends a term to the pending AND chain.
func (g *group[I]) add(node Node[I]) error {
	if g.operand {
		return ErrMissingOperator
	}

	g.chain = append(g.chain, node)
	g.operand = true
	g.operator = false

	return nil
}

// finish folds the pending chains of this level into a single node.
func (g *group[I]) finish() (Node[I], error) {
	if g.operator {
		return nil, ErrDanglingOperator
	}

	if len(g.chain) > 0 {
		g.terms = append(g.terms, NewAnd(g.chain...))
		g.chain = nil
	}

	if len(g.terms) == 0 {
		return nil, ErrEmptyExpression
	}

	return NewOr(g.terms...), nil
}

// Builder assembles an expression tree from a sequence of primitive parser events.
//
// '*' (AND) binds tighter than '+' (OR) and brackets override that. Repeated operators of the same kind are
// flattened into one group, so "a+b+c" results in a single Or with three children. The methods return one
// of the Err* kinds of this package when an event is not valid at the current position.
//
// A Builder must not be shared between concurrent parsers.
type Builder[I any] struct {
	// stack holds one group per open bracket, the outermost level being the first element.
	stack []*group[I]
}

// NewBuilder returns a Builder ready to receive events.
func NewBuilder[I any]() *Builder[I] {
	return &Builder[I]{stack: []*group[I]{new(group[I])}}
}

func (b *Builder[I]) current() *group[I] {
	return b.stack[len(b.stack)-1]
}

// Depth returns the number of currently open brackets.
func (b *Builder[I]) Depth() int {
	return len(b.stack) - 1
}

// AddValue adds a leaf to the current chain.
func (b *Builder[I]) AddValue(value Matcher[I]) error {
	return b.current().add(NewLeaf(value))
}

// AddAnd joins the previous and the next term by conjunction.
func (b *Builder[I]) AddAnd() error {
	g := b.current()
	if !g.operand {
		return ErrDanglingOperator
	}

	g.operand = false
	g.operator = true

	return nil
}

// AddOr finishes the current AND chain and starts a new one.
func (b *Builder[I]) AddOr() error {
	g := b.current()
	if !g.operand {
		return ErrDanglingOperator
	}

	g.terms = append(g.terms, NewAnd(g.chain...))
	g.chain = nil
	g.operand = false
	g.operator = true

	return nil
}

// AddOpenBracket starts a new nesting level.
func (b *Builder[I]) AddOpenBracket() error {
	if b.current().operand {
		return ErrMissingOperator
	}

	b.stack = append(b.stack, new(group[I]))

	return nil
}

// AddCloseBracket finishes the innermost nesting level and adds it as single term to its parent.
func (b *Builder[I]) AddCloseBracket() error {
	if len(b.stack) == 1 {
		return ErrUnbalancedBrackets
	}

	node, err := b.current().finish()
	if err != nil {
		return err
	}

	b.stack[len(b.stack)-1] = nil
	b.stack = b.stack[:len(b.stack)-1]

	return b.current().add(node)
}

// Result finishes the outermost level and returns the resulting Expression.
func (b *Builder[I]) Result() (*Expression[I], error) {
	if len(b.stack) > 1 {
		return nil, ErrUnbalancedBrackets
	}

	root, err := b.current().finish()
	if err != nil {
		return nil, err
	}

	return &Expression[I]{root: root}, nil
}
