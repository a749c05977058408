package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// SchemaError lists every schema violation found in a configuration file
type SchemaError struct {
	Path       string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s does not match the configuration schema: %s",
		e.Path, strings.Join(e.Violations, "; "))
}

// ValidateFile checks a JSON or YAML configuration file against the schema
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var document gojsonschema.JSONLoader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var parsed map[string]any
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if parsed == nil {
			parsed = map[string]any{}
		}
		document = gojsonschema.NewGoLoader(parsed)
	default:
		document = gojsonschema.NewBytesLoader(data)
	}

	return validateDocument(path, document)
}

func validateDocument(path string, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schemaJSON), document)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &SchemaError{Path: path, Violations: violations}
}
