package definition

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// File is the YAML representation of a set of definitions.
type File struct {
	Definitions []*Definition `yaml:"definitions"`
}

// LoadFile reads and initializes all definitions of the given YAML file.
//
// The first malformed definition aborts loading, so that a broken file never goes unnoticed.
func LoadFile(path string) ([]*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	definitions, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("cannot load definitions from %q: %w", path, err)
	}

	return definitions, nil
}

// Load is like LoadFile but reads from the given io.Reader.
func Load(r io.Reader) ([]*Definition, error) {
	var file File
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&file); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(file.Definitions))
	for i, d := range file.Definitions {
		if d == nil {
			return nil, fmt.Errorf("definition #%d is empty", i)
		}

		if err := d.Init(); err != nil {
			return nil, err
		}

		if _, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("duplicate definition %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	return file.Definitions, nil
}
