package definition

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/icinga/icinga-tagfilter/internal/tags"
	"golang.org/x/exp/slices"
)

// ElementTypes restricts a Definition to some kinds of elements. An empty list allows all of them.
//
// It is read from a YAML sequence or from a comma separated database column.
type ElementTypes []tags.ElementType

// Scan implements the sql.Scanner interface.
func (et *ElementTypes) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*et = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ElementTypes", src)
	}

	types := ElementTypes{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var t tags.ElementType
		if err := t.UnmarshalText([]byte(part)); err != nil {
			return err
		}
		types = append(types, t)
	}

	*et = types
	return nil
}

// Value implements the driver.Valuer interface.
func (et ElementTypes) Value() (driver.Value, error) {
	parts := make([]string, 0, len(et))
	for _, t := range et {
		parts = append(parts, string(t))
	}

	return strings.Join(parts, ","), nil
}

// Contains returns true if elements of the given type are allowed.
func (et ElementTypes) Contains(t tags.ElementType) bool {
	return len(et) == 0 || slices.Contains(et, t)
}

// Definition is a named tag filter, e.g. the criterion which map features a quest applies to.
type Definition struct {
	ID           int64        `db:"id" yaml:"id"`
	Name         string       `db:"name" yaml:"name"`
	ElementTypes ElementTypes `db:"element_types" yaml:"element-types"`
	FilterExpr   string       `db:"filter" yaml:"filter"`

	Filter *tags.Filter `db:"-" yaml:"-"`
}

// Init validates this Definition and compiles its filter expression.
//
// A Definition must never be used before Init was successful.
func (d *Definition) Init() error {
	if d.Name == "" {
		return fmt.Errorf("definition %d has no name", d.ID)
	}

	f, err := tags.Parse(d.FilterExpr)
	if err != nil {
		return fmt.Errorf("definition %q: %w", d.Name, err)
	}

	d.Filter = f
	return nil
}

// Matches returns true if the given element is of an allowed type and matches the filter.
func (d *Definition) Matches(element *tags.Element) bool {
	return d.ElementTypes.Contains(element.Type) && d.Filter.Matches(element)
}
