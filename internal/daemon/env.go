package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// yamlTree is a nested YAML mapping built from environment variables. Leaves hold raw YAML scalars.
type yamlTree map[string]any

// PopulateFromYamlEnvironment overrides fields of target by environment variables.
//
// Variable names consist of the prefix and the upper-cased YAML names of the field path joined by '_', e.g.
// PREFIX_DATABASE_HOST for the host key within the database mapping. Fields of inlined structs are addressed
// without the name of the inlined field. Values are interpreted as YAML, so they may be quoted.
// Variables with the prefix that don't address any field result in an error.
func PopulateFromYamlEnvironment(prefix string, target any, environ []string) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct, got %T", target)
	}

	tree := make(yamlTree)
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		key, ok = strings.CutPrefix(key, prefix+"_")
		if !ok {
			continue
		}

		path, err := yamlPath(v.Elem().Type(), key)
		if err != nil {
			return fmt.Errorf("environment variable %s_%s: %w", prefix, key, err)
		}

		tree.insert(path, value)
	}

	if len(tree) == 0 {
		return nil
	}

	var buf bytes.Buffer
	tree.write(&buf, 0)

	return yaml.Unmarshal(buf.Bytes(), target)
}

var errNoField = errors.New("does not address any config field")

// yamlPath resolves the upper-cased, '_' separated key into the YAML key path of a field of t.
func yamlPath(t reflect.Type, key string) ([]string, error) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if slices.Contains(strings.Split(opts, ","), "inline") && ft.Kind() == reflect.Struct {
			if path, err := yamlPath(ft, key); err == nil {
				return path, nil
			}

			continue
		}

		if name == "" || name == "-" {
			continue
		}

		upper := strings.ToUpper(name)
		if key == upper {
			return []string{name}, nil
		}

		rest, ok := strings.CutPrefix(key, upper+"_")
		if !ok || rest == "" {
			continue
		}

		switch ft.Kind() {
		case reflect.Struct:
			if path, err := yamlPath(ft, rest); err == nil {
				return append([]string{name}, path...), nil
			}
		case reflect.Map:
			return []string{name, strings.ToLower(rest)}, nil
		}
	}

	return nil, errNoField
}

func (t yamlTree) insert(path []string, value string) {
	if len(path) == 1 {
		t[path[0]] = value
		return
	}

	sub, ok := t[path[0]].(yamlTree)
	if !ok {
		sub = make(yamlTree)
		t[path[0]] = sub
	}

	sub.insert(path[1:], value)
}

func (t yamlTree) write(buf *bytes.Buffer, indent int) {
	keys := maps.Keys(t)
	slices.Sort(keys)

	for _, key := range keys {
		buf.WriteString(strings.Repeat(" ", indent))
		buf.WriteString(key)
		buf.WriteByte(':')

		switch v := t[key].(type) {
		case yamlTree:
			buf.WriteByte('\n')
			v.write(buf, indent+2)
		case string:
			buf.WriteByte(' ')
			buf.WriteString(v)
			buf.WriteByte('\n')
		}
	}
}
