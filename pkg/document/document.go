// Package document encodes and decodes the persisted workflow definition
// document in JSON and YAML, validating inbound documents against an embedded
// JSON Schema.
package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schema = mustLoadSchema()

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrSchemaViolation   = errors.New("document does not match schema")
	ErrMalformed         = errors.New("malformed document")
)

// Format is a serialization of the document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name or file extension onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json", "application/json":
		return FormatJSON, nil
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the media type used when serving the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}

	return "application/json"
}

// Detect guesses the format of raw by its first significant byte.
func Detect(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}

	return FormatYAML
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSchemaViolation, strings.Join(e.Issues, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}

// Decode parses raw in the given format, validates it against the schema and
// returns the definition it describes.
func Decode(raw []byte, format Format) (*models.WorkflowDefinition, error) {
	canonical, err := toJSON(raw, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(canonical); err != nil {
		return nil, err
	}

	var definition models.WorkflowDefinition
	if err := json.Unmarshal(canonical, &definition); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return &definition, nil
}

// Validate checks a JSON document against the embedded schema.
func Validate(raw []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}

		return &SchemaError{Issues: issues}
	}

	return nil
}

// Encode serializes definition in the given format.
func Encode(definition *models.WorkflowDefinition, format Format) ([]byte, error) {
	if definition == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrMalformed)
	}

	definition = normalized(definition)

	switch format {
	case FormatJSON:
		return json.MarshalIndent(definition, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer

		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)

		if err := encoder.Encode(definition); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// normalized replaces nil node and edge lists so they encode as empty arrays.
func normalized(definition *models.WorkflowDefinition) *models.WorkflowDefinition {
	if definition.Nodes != nil && definition.Edges != nil {
		return definition
	}

	out := *definition
	if out.Nodes == nil {
		out.Nodes = []*models.Node{}
	}

	if out.Edges == nil {
		out.Edges = []*models.Edge{}
	}

	return &out
}

func toJSON(raw []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
		}

		return raw, nil
	case FormatYAML:
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		out, err := json.Marshal(jsonCompatible(generic))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// jsonCompatible rewrites YAML mappings with non-string keys into string keyed maps.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = jsonCompatible(item)
		}

		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = jsonCompatible(item)
		}

		return out
	case []any:
		for i, item := range v {
			v[i] = jsonCompatible(item)
		}

		return v
	default:
		return v
	}
}

func mustLoadSchema() *gojsonschema.Schema {
	loaded, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("document: invalid embedded schema: %v", err))
	}

	return loaded
}
