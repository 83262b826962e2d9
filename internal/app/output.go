package app

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/formsync/internal/formstate"
)

// applyOverrides writes each path=value pair into the defaults document. A
// value that parses as JSON is stored as JSON; anything else is stored as a
// string. Paths use gjson syntax ("items.0.name").
func applyOverrides(defaults map[string]any, overrides []string) (map[string]any, error) {
	if len(overrides) == 0 {
		return defaults, nil
	}
	doc, err := json.Marshal(defaults)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		path, value, ok := strings.Cut(o, "=")
		if !ok || path == "" {
			return nil, opError("override", o, ErrInvalidOverride)
		}
		if gjson.Valid(value) {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value))
		} else {
			doc, err = sjson.SetBytes(doc, path, value)
		}
		if err != nil {
			return nil, opError("override", o, err)
		}
	}
	out := map[string]any{}
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// render encodes a snapshot, narrowed by query when it is not empty.
func render(state formstate.FormState, query string, color bool) ([]byte, error) {
	doc, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if query != "" {
		res := gjson.GetBytes(doc, query)
		if !res.Exists() {
			return nil, opError("query", query, ErrNoMatch)
		}
		doc = []byte(res.Raw)
	}
	doc = pretty.Pretty(doc)
	if color {
		doc = pretty.Color(doc, nil)
	}
	return doc, nil
}
