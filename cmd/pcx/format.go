package main

import (
	"encoding/json"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// humanRenderer is implemented by CLI response types that have a
// human-readable rendering; other types fall back to JSON
type humanRenderer interface {
	renderHuman() string
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		data, err := yaml.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	case FormatHuman:
		if r, ok := resp.(humanRenderer); ok {
			return r.renderHuman(), nil
		}
		return formatJSON(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s (want json, yaml, or human)", format)
	}
}

// formatJSON formats the response as indented JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// emit renders resp in the requested format and prints it to stdout
func emit(resp interface{}, format string) {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fatal("formatting output: %v", err)
	}
	fmt.Println(output)
}

// fatal prints an error to stderr and exits non-zero
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
