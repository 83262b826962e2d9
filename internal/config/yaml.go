package config

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(source string, data []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			perr.Line, _ = strconv.Atoi(m[1])
		}
		return nil, perr
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	tree, ok := normalizeYAML(doc).(map[string]any)
	if !ok {
		return nil, &ParseError{Path: source, Message: ErrNotATable.Error(), Err: ErrNotATable}
	}
	return tree, nil
}

// normalizeYAML converts maps with non-string keys, which yaml.v3 produces for
// documents such as `1: a`, into string-keyed maps.
func normalizeYAML(v any) any {
	switch c := v.(type) {
	case map[string]any:
		for k, child := range c {
			c[k] = normalizeYAML(child)
		}
		return c
	case map[any]any:
		out := make(map[string]any, len(c))
		for k, child := range c {
			out[fmt.Sprint(k)] = normalizeYAML(child)
		}
		return out
	case []any:
		for i, child := range c {
			c[i] = normalizeYAML(child)
		}
		return c
	default:
		return v
	}
}
