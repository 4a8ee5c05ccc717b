package tags

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// ElementType is the kind of a map Element.
type ElementType string

const (
	Node     ElementType = "node"
	Way      ElementType = "way"
	Relation ElementType = "relation"
)

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *ElementType) UnmarshalText(text []byte) error {
	switch et := ElementType(text); et {
	case Node, Way, Relation:
		*t = et
		return nil
	default:
		return fmt.Errorf("unknown element type %q", text)
	}
}

// Element is a map feature described by its key/value tags.
type Element struct {
	Type ElementType       `yaml:"type"`
	ID   int64             `yaml:"id"`
	Tags map[string]string `yaml:"tags"`
}

// String returns the type and id of this Element, e.g. "way/42".
func (e *Element) String() string {
	return fmt.Sprintf("%s/%d", e.Type, e.ID)
}

// LoadElements decodes a YAML sequence of elements.
func LoadElements(r io.Reader) ([]*Element, error) {
	var elements []*Element
	if err := yaml.NewDecoder(r).Decode(&elements); err != nil {
		return nil, fmt.Errorf("cannot decode elements: %w", err)
	}

	for i, e := range elements {
		if e == nil {
			return nil, fmt.Errorf("element #%d is empty", i)
		}
		if e.Type == "" {
			return nil, fmt.Errorf("element #%d has no type", i)
		}
	}

	return elements, nil
}
