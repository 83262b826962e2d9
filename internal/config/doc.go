// Package config loads default form values and process settings for formsync.
//
// Default values are read from TOML, YAML or JSON documents. The format is
// chosen by file extension:
//
//	.toml          pelletier/go-toml
//	.yaml, .yml    gopkg.in/yaml.v3
//	.json          goccy/go-json
//
// Every loader returns a plain map[string]any tree in the shape the form
// store expects: nested maps are map[string]any and arrays are []any.
//
// A document may pull in other documents with a top-level "@include" key
// holding a path or a list of paths, resolved relative to the including
// file. Included documents are merged first, so the including document wins.
//
// Process settings (log level, color) come from environment variables, see
// Settings.
package config
