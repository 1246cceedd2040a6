// Package output renders CLI results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format is an output format name.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table (the default), json, yaml and yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// Print writes data in format f. In table format data must implement
// TableRenderer; emptyMsg replaces an empty table.
func Print(w io.Writer, f Format, data any, renderer TableRenderer, emptyMsg string) error {
	switch f {
	case FormatJSON:
		return PrintJSON(w, data)
	case FormatYAML:
		return PrintYAML(w, data)
	default:
		if renderer == nil {
			return PrintJSON(w, data)
		}
		if len(renderer.Rows()) == 0 && emptyMsg != "" {
			_, err := fmt.Fprintln(w, emptyMsg)
			return err
		}
		return PrintTable(w, renderer)
	}
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// PrintJSON writes indented JSON.
func PrintJSON(w io.Writer, data any) error {
	enc := jsonAPI.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintYAML writes YAML with two-space indentation.
func PrintYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
