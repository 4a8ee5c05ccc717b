package filter

import (
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// char is a single letter leaf that matches if the input contains that letter.
type char rune

func (c char) Matches(input string) bool {
	return strings.ContainsRune(input, rune(c))
}

func (c char) String() string {
	return string(c)
}

// charGrammar reads every rune that isn't an operator as a leaf on its own.
var charGrammar = Grammar[string]{
	ReadLeaf: func(c *Cursor) (Matcher[string], error) {
		r, err := c.Advance()
		if err != nil {
			return nil, err
		}

		return char(r), nil
	},
}

func parseChars(t *testing.T, expr string) *Expression[string] {
	e, err := Parse(expr, charGrammar)
	require.NoError(t, err, "parsing %q should not fail", expr)

	return e
}

func leaf(r rune) Node[string] {
	return NewLeaf[string](char(r))
}

func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("Structure", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Expected   Node[string]
		}{
			{"a", leaf('a')},
			{"((a))", leaf('a')},
			{"a*b", NewAnd(leaf('a'), leaf('b'))},
			{"a+b+c", NewOr(leaf('a'), leaf('b'), leaf('c'))},
			{"a*b*c", NewAnd(leaf('a'), leaf('b'), leaf('c'))},
			{"a*b+c", NewOr(NewAnd(leaf('a'), leaf('b')), leaf('c'))},
			{"a+b*c", NewOr(leaf('a'), NewAnd(leaf('b'), leaf('c')))},
			{"(a+b)*c", NewAnd(NewOr(leaf('a'), leaf('b')), leaf('c'))},
			{"a*(b+c)*d", NewAnd(leaf('a'), NewOr(leaf('b'), leaf('c')), leaf('d'))},
			{"a*b+c*d+e", NewOr(NewAnd(leaf('a'), leaf('b')), NewAnd(leaf('c'), leaf('d')), leaf('e'))},
			{"a*(b*c)", NewAnd(leaf('a'), NewAnd(leaf('b'), leaf('c')))},
			{"(a+(b*(c+d)))", NewOr(leaf('a'), NewAnd(leaf('b'), NewOr(leaf('c'), leaf('d'))))},
		}

		for _, td := range testdata {
			e := parseChars(t, td.Expression)
			assert.Equal(t, td.Expected, e.Root(), "unexpected tree for %q", td.Expression)
		}
	})

	t.Run("String", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Expected   string
		}{
			{"a", "a"},
			{"(a)", "a"},
			{"(a*b)+c", "a*b+c"},
			{"(a+b)*c", "(a+b)*c"},
			{"a*(b*c)", "a*(b*c)"},
			{"a+(b+c)", "a+(b+c)"},
			{"((a+b)*(c+d))+e", "(a+b)*(c+d)+e"},
		}

		for _, td := range testdata {
			assert.Equal(t, td.Expected, parseChars(t, td.Expression).String(), "unexpected string for %q", td.Expression)
		}
	})

	t.Run("PrecedenceMatchesExplicitBrackets", func(t *testing.T) {
		t.Parallel()

		implicit := parseChars(t, "a*b+c")
		explicit := parseChars(t, "(a*b)+c")
		assert.Equal(t, explicit.Root(), implicit.Root())

		for _, input := range []string{"", "a", "b", "c", "ab", "ac", "bc", "abc"} {
			a, b, c := strings.Contains(input, "a"), strings.Contains(input, "b"), strings.Contains(input, "c")
			assert.Equal(t, a && b || c, implicit.Evaluate(input), "unexpected result for input %q", input)
			assert.Equal(t, explicit.Evaluate(input), implicit.Evaluate(input), "unexpected result for input %q", input)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Err        error
			Pos        int
		}{
			{"", ErrEmptyExpression, 0},
			{"()", ErrEmptyExpression, 1},
			{"a*()", ErrEmptyExpression, 3},
			{"(a+b", ErrUnbalancedBrackets, 4},
			{"((a)", ErrUnbalancedBrackets, 4},
			{"a+b)", ErrUnbalancedBrackets, 3},
			{")", ErrUnbalancedBrackets, 0},
			{"a**b", ErrDanglingOperator, 2},
			{"a+*b", ErrDanglingOperator, 2},
			{"*a", ErrDanglingOperator, 0},
			{"+a", ErrDanglingOperator, 0},
			{"a+", ErrDanglingOperator, 2},
			{"(a*)", ErrDanglingOperator, 3},
			{"(+a)", ErrDanglingOperator, 1},
			{"ab", ErrMissingOperator, 1},
			{"a(b)", ErrMissingOperator, 1},
			{"(a)b", ErrMissingOperator, 3},
			{"(a)(b)", ErrMissingOperator, 3},
		}

		for _, td := range testdata {
			e, err := Parse(td.Expression, charGrammar)
			assert.Nil(t, e, "parsing %q should not return an expression", td.Expression)
			if assert.ErrorIs(t, err, td.Err, "unexpected error for %q", td.Expression) {
				var perr *ParseError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, td.Pos, perr.Pos, "unexpected error position for %q", td.Expression)
				assert.Equal(t, td.Expression, perr.Expr)
			}
		}
	})

	t.Run("ErrorMessage", func(t *testing.T) {
		t.Parallel()

		_, err := Parse("a**b", charGrammar)
		assert.EqualError(t, err, "invalid filter 'a**b', dangling logical operator at pos 2")
	})

	t.Run("LeafReaderErrorsArePropagated", func(t *testing.T) {
		t.Parallel()

		errLeaf := errors.New("bad leaf")
		grammar := Grammar[string]{ReadLeaf: func(c *Cursor) (Matcher[string], error) {
			return nil, errLeaf
		}}

		_, err := Parse("a", grammar)
		assert.ErrorIs(t, err, errLeaf)
	})

	t.Run("LeafReaderMustConsumeInput", func(t *testing.T) {
		t.Parallel()

		grammar := Grammar[string]{ReadLeaf: func(c *Cursor) (Matcher[string], error) {
			return char('x'), nil
		}}

		_, err := Parse("a", grammar)
		assert.ErrorIs(t, err, ErrNoProgress)
	})

	t.Run("WordOperatorsAndWhitespace", func(t *testing.T) {
		t.Parallel()

		words := Grammar[map[string]bool]{
			AndWords:       []string{"and"},
			OrWords:        []string{"or"},
			SkipWhitespace: true,
			ReadLeaf: func(c *Cursor) (Matcher[map[string]bool], error) {
				name := c.ReadWhile(unicode.IsLetter)
				return MatcherFunc[map[string]bool](func(input map[string]bool) bool {
					return input[name]
				}), nil
			},
		}

		e, err := Parse(" a AND ( b Or android ) ", words)
		require.NoError(t, err)

		assert.True(t, e.Evaluate(map[string]bool{"a": true, "android": true}))
		assert.True(t, e.Evaluate(map[string]bool{"a": true, "b": true}))
		assert.False(t, e.Evaluate(map[string]bool{"a": true, "and": true}))
		assert.False(t, e.Evaluate(map[string]bool{"b": true, "android": true}))
		assert.Len(t, e.Leaves(), 3)
	})
}
