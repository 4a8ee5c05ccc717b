package tags

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/icinga/icinga-tagfilter/internal/filter"
	"golang.org/x/exp/slices"
)

var (
	// ErrExpectedString is returned when a key or value is missing at the current position.
	ErrExpectedString = errors.New("expected a key or value")
	// ErrUnterminatedString is returned when a quoted key or value isn't closed.
	ErrUnterminatedString = errors.New("unterminated quoted string")
)

// reserved contains all chars that terminate bare keys and values.
const reserved = `*+()!=~<>"'`

func isBareRune(r rune) bool {
	return !unicode.IsSpace(r) && !strings.ContainsRune(reserved, r)
}

// grammar segments tag filters such as `highway=residential * (!name + name~".*weg")`.
//
// Leaves are combined with '*' or "and" and with '+' or "or", white space between tokens is ignored.
var grammar = filter.Grammar[*Element]{
	AndWords:       []string{"and"},
	OrWords:        []string{"or"},
	SkipWhitespace: true,
	ReadLeaf:       readLeaf,
}

// Filter is a compiled tag filter expression.
type Filter struct {
	expr string
	tree *filter.Expression[*Element]
}

// Parse parses a tag filter expression.
//
// Returned errors are *filter.ParseError that wrap either one of the filter.Err* kinds, ErrExpectedString,
// ErrUnterminatedString or an invalid condition.
func Parse(expr string) (*Filter, error) {
	tree, err := filter.Parse(expr, grammar)
	if err != nil {
		return nil, err
	}

	return &Filter{expr: expr, tree: tree}, nil
}

// MustParse is like Parse but panics if the expression cannot be parsed.
func MustParse(expr string) *Filter {
	f, err := Parse(expr)
	if err != nil {
		panic(err)
	}

	return f
}

// Matches returns true if the given element matches this filter.
func (f *Filter) Matches(element *Element) bool {
	return f.tree.Evaluate(element)
}

// Expr returns the expression this Filter was parsed from.
func (f *Filter) Expr() string {
	return f.expr
}

// Tree returns the underlying expression tree.
func (f *Filter) Tree() *filter.Expression[*Element] {
	return f.tree
}

// Keys returns the sorted set of tag keys referenced by this filter.
func (f *Filter) Keys() []string {
	var keys []string
	for _, leaf := range f.tree.Leaves() {
		if k, ok := leaf.(interface{ Key() string }); ok {
			keys = append(keys, k.Key())
		}
	}

	slices.Sort(keys)
	return slices.Compact(keys)
}

// String returns the canonical representation of this filter.
func (f *Filter) String() string {
	return f.tree.String()
}

// readLeaf reads a single tag condition, i.e. "key", "!key" or "key OP value".
func readLeaf(c *filter.Cursor) (filter.Matcher[*Element], error) {
	if c.NextIsAndAdvance('!') {
		c.SkipWhitespace()

		key, err := readString(c)
		if err != nil {
			return nil, err
		}

		return NewNotExists(key), nil
	}

	key, err := readString(c)
	if err != nil {
		return nil, err
	}

	c.SkipWhitespace()

	op := readOperator(c)
	if op == "" {
		return NewExists(key), nil
	}

	c.SkipWhitespace()

	value, err := readString(c)
	if err != nil {
		return nil, err
	}

	return NewCondition(key, op, value)
}

// readOperator consumes the next comparison operator, returns an empty string if there is none.
func readOperator(c *filter.Cursor) CompOperator {
	for _, op := range operators {
		if c.NextIsStringAndAdvance(string(op)) {
			return op
		}
	}

	return ""
}

// readString reads either a quoted string or a bare one, the latter being url-unescaped.
func readString(c *filter.Cursor) (string, error) {
	if quoteChar, ok := c.Peek(); ok && (quoteChar == '"' || quoteChar == '\'') {
		_, _ = c.Advance()

		var buf strings.Builder
		for {
			r, err := c.Advance()
			if err != nil {
				return "", ErrUnterminatedString
			}

			switch r {
			case quoteChar:
				return buf.String(), nil
			case '\\':
				r, err = c.Advance()
				if err != nil {
					return "", ErrUnterminatedString
				}
			}

			buf.WriteRune(r)
		}
	}

	raw := c.ReadWhile(isBareRune)
	if raw == "" {
		return "", ErrExpectedString
	}

	s, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("cannot unescape %q: %w", raw, err)
	}

	return s, nil
}
