package appconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.yaml.in/yaml/v3"
)

// configSchema describes the accepted shape of the configuration file.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "profile":            { "type": "string", "enum": ["", "short", "default", "long"] },
    "minBatchDuration":   { "type": "string" },
    "maxBatchIterations": { "type": "integer", "minimum": 0 },
    "maxWarmupBatches":   { "type": "integer", "minimum": -1 },
    "warmupStability":    { "type": "number", "minimum": 0 },
    "measuredBatches":    { "type": "integer", "minimum": 0 },
    "outlierFence":       { "type": "number" },
    "calibrationTimeout": { "type": "string" },
    "runTimeout":         { "type": "string" },
    "retryBudget":        { "type": "integer", "minimum": -1 },
    "confidence":         { "type": "number", "minimum": 0, "exclusiveMaximum": 1 },
    "memoryDiagnoser":    { "type": "boolean" },
    "seed":               { "type": "integer", "minimum": 0 },
    "inputSize":          { "type": "integer", "minimum": 0 },
    "filter":             { "type": "string" },
    "baseline":           { "type": "string" },
    "format":             { "type": "string", "enum": ["", "table", "markdown", "csv", "json"] },
    "output":             { "type": "string" },
    "resultsDir":         { "type": "string" },
    "saveResults":        { "type": "boolean" },
    "promFile":           { "type": "string" },
    "tui":                { "type": "boolean" },
    "debug":              { "type": "boolean" },
    "logFile":            { "type": "string" }
  }
}`

// ValidateDocument validates raw config JSON against the configuration schema.
func ValidateDocument(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("JSON validation failed: %s", strings.Join(errs, ", "))
}

// DocumentJSON returns the configuration document at path as JSON. YAML files
// (.yaml, .yml) are converted; anything else is returned unchanged.
func DocumentJSON(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		return json.Marshal(doc)
	default:
		return data, nil
	}
}
