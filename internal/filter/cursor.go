package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLanguage is used for the case normalisation of a Cursor when no language is given.
var DefaultLanguage = language.AmericanEnglish

// Cursor wraps a filter string and keeps track of the current read position.
//
// All positions are counted in runes. Comparisons of the Next* methods are case-insensitive according to the
// lower casing rules of the language the Cursor was created with. A Cursor is not safe for concurrent use.
type Cursor struct {
	input []rune
	pos   int
	lower cases.Caser
}

// NewCursor returns a Cursor positioned at the start of input.
func NewCursor(input string, tag language.Tag) *Cursor {
	if tag == language.Und {
		tag = DefaultLanguage
	}

	return &Cursor{input: []rune(input), lower: cases.Lower(tag)}
}

// Input returns the whole input string.
func (c *Cursor) Input() string {
	return string(c.input)
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the number of runes of the input.
func (c *Cursor) Len() int {
	return len(c.input)
}

// IsAtEnd returns true if every rune of the input has been consumed.
func (c *Cursor) IsAtEnd() bool {
	return c.pos >= len(c.input)
}

// Peek returns the rune at the current position without consuming it.
// Returns false when the Cursor is at the end.
func (c *Cursor) Peek() (rune, bool) {
	if c.IsAtEnd() {
		return 0, false
	}

	return c.input[c.pos], true
}

// Advance returns the rune at the current position and moves the position forward by one.
func (c *Cursor) Advance() (rune, error) {
	if c.IsAtEnd() {
		return 0, ErrOutOfBounds
	}

	r := c.input[c.pos]
	c.pos++

	return r, nil
}

// AdvanceBy consumes the next n runes and returns them.
// Fails with ErrOutOfBounds and leaves the position untouched if fewer than n runes are left.
func (c *Cursor) AdvanceBy(n int) (string, error) {
	if n < 0 || c.pos+n > len(c.input) {
		return "", ErrOutOfBounds
	}

	s := string(c.input[c.pos : c.pos+n])
	c.pos += n

	return s, nil
}

// NextIsAndAdvance consumes the next rune only if it equals expected.
func (c *Cursor) NextIsAndAdvance(expected rune) bool {
	if !c.NextIs(expected) {
		return false
	}

	c.pos++
	return true
}

// NextIs reports whether the next rune equals expected without consuming it.
func (c *Cursor) NextIs(expected rune) bool {
	r, ok := c.Peek()
	if !ok {
		return false
	}

	return r == expected || c.lower.String(string(r)) == c.lower.String(string(expected))
}

// NextIsStringAndAdvance consumes len(expected) runes only if they equal expected.
func (c *Cursor) NextIsStringAndAdvance(expected string) bool {
	want := []rune(expected)
	if c.pos+len(want) > len(c.input) {
		return false
	}

	have := string(c.input[c.pos : c.pos+len(want)])
	if have != expected && c.lower.String(have) != c.lower.String(expected) {
		return false
	}

	c.pos += len(want)
	return true
}

// SkipWhitespace consumes all white space at the current position and returns how many runes were skipped.
func (c *Cursor) SkipWhitespace() int {
	return len([]rune(c.ReadWhile(unicode.IsSpace)))
}

// ReadWhile consumes and returns runes as long as fn returns true for them.
func (c *Cursor) ReadWhile(fn func(rune) bool) string {
	start := c.pos
	for c.pos < len(c.input) && fn(c.input[c.pos]) {
		c.pos++
	}

	return string(c.input[start:c.pos])
}

// FindNext returns the distance from the current position to the next occurrence of any of the given chars.
// Returns the number of remaining runes if none of them occurs anymore.
func (c *Cursor) FindNext(chars string) int {
	for i := c.pos; i < len(c.input); i++ {
		if strings.ContainsRune(chars, c.input[i]) {
			return i - c.pos
		}
	}

	return len(c.input) - c.pos
}
