package config

import (
	"errors"

	"github.com/goccy/go-json"
)

func decodeJSON(source string, data []byte) (map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var serr *json.SyntaxError
		if errors.As(err, &serr) {
			perr.Line, perr.Column = position(data, int(serr.Offset))
		}
		return nil, perr
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	tree, ok := doc.(map[string]any)
	if !ok {
		return nil, &ParseError{Path: source, Message: ErrNotATable.Error(), Err: ErrNotATable}
	}
	return tree, nil
}
