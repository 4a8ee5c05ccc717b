package filter

import (
	"unicode"

	"golang.org/x/text/language"
)

// LeafReader reads a single leaf value starting at the current position of the given Cursor.
//
// It must consume at least one rune on success. Any returned error aborts parsing and is reported
// as a *ParseError at the position the Cursor was left at.
type LeafReader[I any] func(c *Cursor) (Matcher[I], error)

// Grammar describes how a filter string is segmented into operators, brackets and leaf values.
type Grammar[I any] struct {
	// And, Or, Open and Close are the single-rune operator tokens. Zero values default to '*', '+', '(' and ')'.
	And, Or, Open, Close rune

	// AndWords and OrWords are optional word aliases for the operators, e.g. "and" and "or".
	// A word only counts as operator if it is followed by white space, a bracket or the end of the input.
	AndWords, OrWords []string

	// SkipWhitespace allows arbitrary white space between tokens.
	SkipWhitespace bool

	// Language is used to case-normalise operator comparisons, defaults to DefaultLanguage.
	Language language.Tag

	// ReadLeaf reads everything that isn't an operator or a bracket.
	ReadLeaf LeafReader[I]
}

func (g *Grammar[I]) runes() (and, or, open, closing rune) {
	and, or, open, closing = g.And, g.Or, g.Open, g.Close
	if and == 0 {
		and = '*'
	}
	if or == 0 {
		or = '+'
	}
	if open == 0 {
		open = '('
	}
	if closing == 0 {
		closing = ')'
	}

	return
}

// nextIsWord consumes one of the given words if it appears as a whole word at the cursor position.
func (g *Grammar[I]) nextIsWord(c *Cursor, words []string) bool {
	_, _, open, closing := g.runes()
	for _, word := range words {
		start := c.pos
		if !c.NextIsStringAndAdvance(word) {
			continue
		}

		if r, ok := c.Peek(); !ok || unicode.IsSpace(r) || r == open || r == closing {
			return true
		}

		c.pos = start
	}

	return false
}

// Parse parses the given filter string according to grammar and returns the compiled Expression.
//
// All errors are returned as *ParseError.
func Parse[I any](expr string, grammar Grammar[I]) (*Expression[I], error) {
	if grammar.ReadLeaf == nil {
		panic("filter: Grammar.ReadLeaf must not be nil")
	}

	and, or, open, closing := grammar.runes()
	c := NewCursor(expr, grammar.Language)
	b := NewBuilder[I]()

	for {
		if grammar.SkipWhitespace {
			c.SkipWhitespace()
		}

		if c.IsAtEnd() {
			break
		}

		pos := c.Pos()

		var err error
		switch {
		case c.NextIsAndAdvance(and), grammar.nextIsWord(c, grammar.AndWords):
			err = b.AddAnd()
		case c.NextIsAndAdvance(or), grammar.nextIsWord(c, grammar.OrWords):
			err = b.AddOr()
		case c.NextIsAndAdvance(open):
			err = b.AddOpenBracket()
		case c.NextIsAndAdvance(closing):
			err = b.AddCloseBracket()
		default:
			value, rerr := grammar.ReadLeaf(c)
			if rerr != nil {
				return nil, &ParseError{Expr: expr, Pos: c.Pos(), Err: rerr}
			}

			if c.Pos() == pos {
				err = ErrNoProgress
			} else {
				err = b.AddValue(value)
			}
		}

		if err != nil {
			return nil, &ParseError{Expr: expr, Pos: pos, Err: err}
		}
	}

	result, err := b.Result()
	if err != nil {
		return nil, &ParseError{Expr: expr, Pos: c.Pos(), Err: err}
	}

	return result, nil
}
