package filter

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Leaf is a terminal node wrapping a single opaque Matcher.
type Leaf[I any] struct {
	value Matcher[I]
}

// NewLeaf returns a Leaf node for the given value.
func NewLeaf[I any](value Matcher[I]) *Leaf[I] {
	return &Leaf[I]{value: value}
}

// Value returns the Matcher of this Leaf.
func (l *Leaf[I]) Value() Matcher[I] {
	return l.value
}

// Eval delegates to the wrapped Matcher.
func (l *Leaf[I]) Eval(input I) bool {
	return l.value.Matches(input)
}

func (l *Leaf[I]) String() string {
	if s, ok := l.value.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%v", l.value)
}

func (l *Leaf[I]) sealed() {}

// And is a group node that matches when all of its children match.
// It always holds at least two children.
type And[I any] struct {
	children []Node[I]
}

// NewAnd creates a conjunction of the given nodes.
//
// A single node is returned as is, since a group of one is equivalent to its sole child.
// Returns nil if no nodes are given.
func NewAnd[I any](children ...Node[I]) Node[I] {
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return &And[I]{children: slices.Clone(children)}
	}
}

// Children returns a copy of the children of this group.
func (a *And[I]) Children() []Node[I] {
	return slices.Clone(a.children)
}

// Eval returns true if all children evaluate to true. It stops at the first child that doesn't match.
func (a *And[I]) Eval(input I) bool {
	for _, child := range a.children {
		if !child.Eval(input) {
			return false
		}
	}

	return true
}

func (a *And[I]) String() string {
	parts := make([]string, 0, len(a.children))
	for _, child := range a.children {
		switch child.(type) {
		case *Or[I], *And[I]:
			// Nested conjunctions only exist through explicit brackets, e.g. "a*(b*c)".
			parts = append(parts, "("+child.String()+")")
		default:
			parts = append(parts, child.String())
		}
	}

	return strings.Join(parts, "*")
}

func (a *And[I]) sealed() {}

// Or is a group node that matches when at least one of its children matches.
// It always holds at least two children.
type Or[I any] struct {
	children []Node[I]
}

// NewOr creates a disjunction of the given nodes, see NewAnd for the handling of fewer than two nodes.
func NewOr[I any](children ...Node[I]) Node[I] {
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children[0]
	default:
		return &Or[I]{children: slices.Clone(children)}
	}
}

// Children returns a copy of the children of this group.
func (o *Or[I]) Children() []Node[I] {
	return slices.Clone(o.children)
}

// Eval returns true if any child evaluates to true. It stops at the first child that matches.
func (o *Or[I]) Eval(input I) bool {
	for _, child := range o.children {
		if child.Eval(input) {
			return true
		}
	}

	return false
}

func (o *Or[I]) String() string {
	parts := make([]string, 0, len(o.children))
	for _, child := range o.children {
		if _, ok := child.(*Or[I]); ok {
			// Only reachable through explicit brackets, e.g. "a+(b+c)".
			parts = append(parts, "("+child.String()+")")
		} else {
			parts = append(parts, child.String())
		}
	}

	return strings.Join(parts, "+")
}

func (o *Or[I]) sealed() {}
