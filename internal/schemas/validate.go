// Package schemas validates structured resume documents against JSON Schema.
package schemas

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/resume-builder/schemas"
)

// ErrMalformedDocument is returned when the document is not parseable JSON
var ErrMalformedDocument = errors.New("malformed JSON document")

// FieldError is one schema violation. Field is a dotted path, "(root)" for the document itself.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Schema is a compiled JSON Schema
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses a JSON Schema definition
func Compile(definition []byte) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(definition))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate returns nil, a *ValidationError, or an error wrapping ErrMalformedDocument
func (s *Schema) Validate(document []byte) error {
	result, err := s.compiled.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{Field: desc.Field(), Message: desc.Description()})
	}
	return ve
}

var structuredResume = sync.OnceValues(func() (*Schema, error) {
	return Compile(embedded.StructuredResume)
})

// ValidateStructuredResume checks document against the embedded structured resume schema
func ValidateStructuredResume(document []byte) error {
	schema, err := structuredResume()
	if err != nil {
		return fmt.Errorf("structured_resume.schema.json: %w", err)
	}
	return schema.Validate(document)
}
