package tags

import (
	"strings"
	"testing"

	"github.com/icinga/icinga-tagfilter/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	element := &Element{
		Type: Way,
		ID:   42,
		Tags: map[string]string{
			"highway":          "residential",
			"name":             "Hauptstraße",
			"maxspeed":         "30",
			"lanes":            "two",
			"addr:street":      "Nürnberger Straße",
			"name:etymology":   "",
			"surface":          "asphalt",
			"Nuremberg (city)": "yes",
		},
	}

	testdata := []struct {
		Expression string
		Expected   bool
	}{
		{"highway", true},
		{"railway", false},
		{"!railway", true},
		{"!highway", false},
		{"highway=residential", true},
		{"highway=primary", false},
		{"Highway=residential", false},
		{"highway = residential", true},
		{"highway!=primary", true},
		{"railway!=rail", true},
		{"highway~residentia.", true},
		{`highway~"res.*"`, true},
		{"highway~resi", false},
		{`name!~".*weg"`, true},
		{`railway!~".*"`, true},
		{"maxspeed<50", true},
		{"maxspeed<=30", true},
		{"maxspeed>30", false},
		{"maxspeed>=30", true},
		{"lanes>1", false},
		{"railway<100", false},
		{"name:etymology", true},
		{`name:etymology=""`, true},
		{"addr:street=Nürnberger%20Straße", true},
		{"'Nuremberg (city)'=yes", true},
		{"Nuremberg%20%28city%29", true},
		{"highway=residential * name", true},
		{"highway=residential * !name", false},
		{"highway=primary + highway=residential", true},
		{"highway=primary + highway=secondary * name", false},
		{"highway=residential * surface=gravel + maxspeed=30", true},
		{"highway=residential * (surface=gravel + maxspeed=30)", true},
		{"highway=residential * (surface=gravel + maxspeed=50)", false},
		{"highway=residential and (surface=gravel or maxspeed<=30)", true},
		{"highway=residential AND !name", false},
	}

	for _, td := range testdata {
		f, err := Parse(td.Expression)
		if assert.NoError(t, err, "parsing %q should not return an error", td.Expression) {
			assert.Equal(t, td.Expected, f.Matches(element), "unexpected filter result for %q", td.Expression)
		}
	}
}

func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("ParserIdentifiesAllKindOfLeaves", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Expected   filter.Matcher[*Element]
		}{
			{"foo", NewExists("foo")},
			{"!foo", NewNotExists("foo")},
			{"! foo", NewNotExists("foo")},
			{"foo=bar", mustCondition(t, "foo", Equal, "bar")},
			{"foo!=bar", mustCondition(t, "foo", UnEqual, "bar")},
			{"foo~ba.", mustCondition(t, "foo", Like, "ba.")},
			{"foo!~ba.", mustCondition(t, "foo", UnLike, "ba.")},
			{"foo<1", mustCondition(t, "foo", LessThan, "1")},
			{"foo<=1", mustCondition(t, "foo", LessThanEqual, "1")},
			{"foo>1.5", mustCondition(t, "foo", GreaterThan, "1.5")},
			{"foo>=-1", mustCondition(t, "foo", GreaterThanEqual, "-1")},
		}

		for _, td := range testdata {
			f, err := Parse(td.Expression)
			require.NoError(t, err, "parsing %q should not return an error", td.Expression)

			leaf, ok := f.Tree().Root().(*filter.Leaf[*Element])
			require.True(t, ok, "%q should be parsed into a single leaf", td.Expression)
			assert.Equal(t, td.Expected, leaf.Value())
		}
	})

	t.Run("QuotedStrings", func(t *testing.T) {
		t.Parallel()

		f, err := Parse(`"a \"quoted\" key"='*+()'`)
		require.NoError(t, err)

		assert.True(t, f.Matches(&Element{Tags: map[string]string{`a "quoted" key`: "*+()"}}))
		assert.Equal(t, `"a \"quoted\" key"="*+()"`, f.String())
	})

	t.Run("CanonicalString", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Expected   string
		}{
			{"highway = residential", "highway=residential"},
			{"a and b or c", "a*b+c"},
			{"(a or b) and !c", "(a+b)*!c"},
			{"name~'.*weg'", `name~".*weg"`},
			{"and=or", `"and"="or"`},
			{"key=100%25", `key="100%"`},
		}

		for _, td := range testdata {
			f, err := Parse(td.Expression)
			if assert.NoError(t, err, "parsing %q should not return an error", td.Expression) {
				assert.Equal(t, td.Expected, f.String())

				reparsed, err := Parse(f.String())
				require.NoError(t, err, "parsing the canonical form of %q should not fail", td.Expression)
				assert.Equal(t, f.String(), reparsed.String())
			}
		}
	})

	t.Run("Keys", func(t *testing.T) {
		t.Parallel()

		f := MustParse(`highway=residential * (!name + name~".+weg" + highway=service)`)
		assert.Equal(t, []string{"highway", "name"}, f.Keys())
		assert.Equal(t, `highway=residential * (!name + name~".+weg" + highway=service)`, f.Expr())
	})

	t.Run("Errors", func(t *testing.T) {
		t.Parallel()

		testdata := []struct {
			Expression string
			Err        error
			Message    string
		}{
			{"", filter.ErrEmptyExpression, ""},
			{"   ", filter.ErrEmptyExpression, ""},
			{"highway residential", filter.ErrMissingOperator, ""},
			{"highway * * name", filter.ErrDanglingOperator, ""},
			{"highway +", filter.ErrDanglingOperator, ""},
			{"(highway + name", filter.ErrUnbalancedBrackets, ""},
			{"highway + name)", filter.ErrUnbalancedBrackets, ""},
			{"highway=", ErrExpectedString, ""},
			{"!", ErrExpectedString, ""},
			{"=value", ErrExpectedString, ""},
			{`name="unterminated`, ErrUnterminatedString, ""},
			{"maxspeed<fast", nil, `value "fast" of comparison "<" is not a number`},
			{`name~"("`, nil, "invalid regular expression"},
			{"name=%zz", nil, "cannot unescape"},
		}

		for _, td := range testdata {
			f, err := Parse(td.Expression)
			assert.Nil(t, f)
			if !assert.Error(t, err, "parsing %q should fail", td.Expression) {
				continue
			}

			if td.Err != nil {
				assert.ErrorIs(t, err, td.Err, "unexpected error for %q", td.Expression)
			}
			if td.Message != "" {
				assert.True(t, strings.Contains(err.Error(), td.Message), "error %q should contain %q", err, td.Message)
			}
		}
	})

	t.Run("MustParsePanics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { MustParse("highway +") })
	})
}

func TestLoadElements(t *testing.T) {
	t.Parallel()

	elements, err := LoadElements(strings.NewReader(`
- type: node
  id: 1
  tags:
    amenity: bench
    backrest: "yes"
- type: way
  id: 2
`))
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, &Element{Type: Node, ID: 1, Tags: map[string]string{"amenity": "bench", "backrest": "yes"}}, elements[0])
	assert.Equal(t, "way/2", elements[1].String())

	_, err = LoadElements(strings.NewReader("- type: area\n  id: 3\n"))
	assert.ErrorContains(t, err, `unknown element type "area"`)

	_, err = LoadElements(strings.NewReader("- id: 3\n"))
	assert.EqualError(t, err, "element #0 has no type")
}

func mustCondition(t *testing.T, key string, op CompOperator, value string) *Condition {
	c, err := NewCondition(key, op, value)
	require.NoError(t, err)

	return c
}
