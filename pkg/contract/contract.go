// Package contract embeds the OpenAPI description of the lead form HTTP API
// and the lead event payload, and validates payloads against it.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema names declared under components/schemas.
const (
	SchemaLead           = "Lead"
	SchemaLeadEvent      = "LeadEvent"
	SchemaSessionView    = "SessionView"
	SchemaStepSubmission = "StepSubmission"
)

//go:embed openapi/leadform.yaml
var rawDocument []byte

// Document wraps a validated OpenAPI document together with its source bytes.
type Document struct {
	spec *openapi3.T
	raw  []byte
}

var (
	defaultOnce sync.Once
	defaultDoc  *Document
	defaultErr  error
)

// Default returns the embedded document. It is parsed and validated once.
func Default() (*Document, error) {
	defaultOnce.Do(func() {
		defaultDoc, defaultErr = Load(context.Background(), rawDocument)
	})
	return defaultDoc, defaultErr
}

// MustDefault panics when the embedded document is invalid.
func MustDefault() *Document {
	doc, err := Default()
	if err != nil {
		panic(err)
	}
	return doc
}

// Load parses and validates an OpenAPI document.
func Load(ctx context.Context, raw []byte) (*Document, error) {
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	return &Document{spec: spec, raw: append([]byte(nil), raw...)}, nil
}

// Raw returns the YAML source of the document.
func (d *Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Spec exposes the parsed document.
func (d *Document) Spec() *openapi3.T {
	return d.spec
}

// Operations lists operation ids keyed by "METHOD path".
func (d *Document) Operations() map[string]string {
	out := make(map[string]string)
	if d.spec.Paths == nil {
		return out
	}
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out[method+" "+path] = op.OperationID
		}
	}
	return out
}

// Schema looks up a component schema by name.
func (d *Document) Schema(name string) (*openapi3.Schema, error) {
	if d.spec.Components == nil {
		return nil, fmt.Errorf("contract: document declares no components")
	}
	ref, ok := d.spec.Components.Schemas[name]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("contract: schema %q not found", name)
	}
	return ref.Value, nil
}

// Validate checks value against the named component schema. Value may be any
// JSON-encodable Go value; it is normalised through encoding/json first so
// structs and typed maps validate the same way decoded JSON does.
func (d *Document) Validate(name string, value any) error {
	schema, err := d.Schema(name)
	if err != nil {
		return err
	}
	generic, err := normalise(value)
	if err != nil {
		return fmt.Errorf("contract: encode %s: %w", name, err)
	}
	if err := schema.VisitJSON(generic, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("contract: %s: %w", name, err)
	}
	return nil
}

func normalise(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
