package tags

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CompOperator is a type used for grouping the individual comparison operators of a tag filter.
type CompOperator string

// List of the supported comparison operators.
const (
	Equal            CompOperator = "="
	UnEqual          CompOperator = "!="
	Like             CompOperator = "~"
	UnLike           CompOperator = "!~"
	LessThan         CompOperator = "<"
	LessThanEqual    CompOperator = "<="
	GreaterThan      CompOperator = ">"
	GreaterThanEqual CompOperator = ">="
)

// operators is ordered so that two char operators are tried before their one char prefixes.
var operators = []CompOperator{UnEqual, UnLike, LessThanEqual, GreaterThanEqual, Equal, Like, LessThan, GreaterThan}

// Exists matches elements that have the given key, regardless of its value.
type Exists struct {
	key string
}

func NewExists(key string) *Exists {
	return &Exists{key: key}
}

func (e *Exists) Matches(element *Element) bool {
	_, ok := element.Tags[e.key]
	return ok
}

// Key returns the tag key of this leaf.
func (e *Exists) Key() string {
	return e.key
}

func (e *Exists) String() string {
	return quote(e.key)
}

// NotExists matches elements that don't have the given key.
type NotExists struct {
	key string
}

func NewNotExists(key string) *NotExists {
	return &NotExists{key: key}
}

func (n *NotExists) Matches(element *Element) bool {
	_, ok := element.Tags[n.key]
	return !ok
}

// Key returns the tag key of this leaf.
func (n *NotExists) Key() string {
	return n.key
}

func (n *NotExists) String() string {
	return "!" + quote(n.key)
}

// Condition represents a single key/value comparison.
//
// All its fields are read-only and aren't supposed to change after NewCondition. The negated operators (!=, !~)
// also match elements without the key, all others require it. Ordering comparisons are numeric and never match
// values that can't be parsed as number.
type Condition struct {
	op    CompOperator
	key   string
	value string

	regex  *regexp.Regexp // set for Like and UnLike
	number float64        // set for the ordering comparisons
}

// NewCondition validates the given operator and value and returns the resulting Condition.
func NewCondition(key string, op CompOperator, value string) (*Condition, error) {
	c := &Condition{op: op, key: key, value: value}

	switch op {
	case Equal, UnEqual:
	case Like, UnLike:
		// Regular expressions always have to match the whole value.
		regex, err := regexp.Compile("^(?:" + value + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression %q: %w", value, err)
		}
		c.regex = regex
	case LessThan, LessThanEqual, GreaterThan, GreaterThanEqual:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value %q of comparison %q is not a number", value, op)
		}
		c.number = number
	default:
		return nil, fmt.Errorf("invalid comparison operator provided: %q", op)
	}

	return c, nil
}

// Matches evaluates this Condition based on its operator.
func (c *Condition) Matches(element *Element) bool {
	value, ok := element.Tags[c.key]

	switch c.op {
	case Equal:
		return ok && value == c.value
	case UnEqual:
		return !ok || value != c.value
	case Like:
		return ok && c.regex.MatchString(value)
	case UnLike:
		return !ok || !c.regex.MatchString(value)
	}

	if !ok {
		return false
	}

	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}

	switch c.op {
	case LessThan:
		return number < c.number
	case LessThanEqual:
		return number <= c.number
	case GreaterThan:
		return number > c.number
	case GreaterThanEqual:
		return number >= c.number
	default:
		return false
	}
}

// Key returns the tag key of this Condition.
func (c *Condition) Key() string {
	return c.key
}

// Value returns the value of this Condition.
func (c *Condition) Value() string {
	return c.value
}

// Operator returns the comparison operator of this Condition.
func (c *Condition) Operator() CompOperator {
	return c.op
}

func (c *Condition) String() string {
	return quote(c.key) + string(c.op) + quote(c.value)
}

// quote returns s as is if it can be read back as bare string, otherwise it is wrapped in double quotes.
func quote(s string) string {
	bare := s != "" && strings.IndexFunc(s, func(r rune) bool { return !isBareRune(r) || r == '%' }) == -1
	if bare && !strings.EqualFold(s, "and") && !strings.EqualFold(s, "or") {
		return s
	}

	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
