package model

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed definitions/*.yaml
var embeddedDefinitions embed.FS

const defaultDefinitionPath = "definitions/leadform.yaml"

var (
	defaultOnce sync.Once
	defaultDef  FormDefinition
	defaultErr  error
)

// DefaultDefinition returns the built-in three step lead form. The embedded
// document is parsed once; callers receive a deep copy they are free to mutate.
func DefaultDefinition() (FormDefinition, error) {
	defaultOnce.Do(func() {
		data, err := fs.ReadFile(embeddedDefinitions, defaultDefinitionPath)
		if err != nil {
			defaultErr = fmt.Errorf("model: read embedded definition: %w", err)
			return
		}
		defaultDef, defaultErr = LoadDefinition(bytes.NewReader(data))
	})
	if defaultErr != nil {
		return FormDefinition{}, defaultErr
	}
	return defaultDef.Clone(), nil
}

// MustDefaultDefinition panics when the embedded definition is invalid. Useful
// for init-time wiring and tests.
func MustDefaultDefinition() FormDefinition {
	def, err := DefaultDefinition()
	if err != nil {
		panic(err)
	}
	return def
}

// DefinitionsFS exposes the embedded definition bundle.
func DefinitionsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefinitions, "definitions")
	if err != nil {
		return embeddedDefinitions
	}
	return sub
}

// LoadDefinitionFile reads a YAML definition from disk.
func LoadDefinitionFile(path string) (FormDefinition, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FormDefinition{}, errors.New("model: definition path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return FormDefinition{}, fmt.Errorf("model: open definition: %w", err)
	}
	defer func() { _ = f.Close() }()

	def, err := LoadDefinition(f)
	if err != nil {
		return FormDefinition{}, fmt.Errorf("model: %s: %w", path, err)
	}
	return def, nil
}

// LoadDefinition decodes and validates a YAML (or JSON, which is a YAML
// subset) definition. Unknown keys are rejected so typos in field attributes
// surface at load time instead of being silently ignored.
func LoadDefinition(r io.Reader) (FormDefinition, error) {
	if r == nil {
		return FormDefinition{}, errors.New("model: missing reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return FormDefinition{}, fmt.Errorf("model: read definition: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return FormDefinition{}, errors.New("model: definition is empty")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def FormDefinition
	if err := dec.Decode(&def); err != nil {
		return FormDefinition{}, fmt.Errorf("model: decode definition: %w", err)
	}
	def.normalise()
	if err := def.Validate(); err != nil {
		return FormDefinition{}, err
	}
	return def, nil
}

func (d *FormDefinition) normalise() {
	d.ID = strings.TrimSpace(d.ID)
	for i := range d.Steps {
		step := &d.Steps[i]
		if step.Transition.Kind == "" {
			step.Transition.Kind = TransitionNext
		}
		for j := range step.Fields {
			field := &step.Fields[j]
			field.Name = strings.TrimSpace(field.Name)
			if field.Kind == "" {
				field.Kind = FieldKindText
			}
		}
	}
}

// Clone returns a deep copy of the definition.
func (d FormDefinition) Clone() FormDefinition {
	out := d
	if d.Steps != nil {
		out.Steps = make([]StepDefinition, len(d.Steps))
		for i, step := range d.Steps {
			out.Steps[i] = step.Clone()
		}
	}
	if d.Outcomes != nil {
		out.Outcomes = make(map[OutcomeKey]Outcome, len(d.Outcomes))
		for k, v := range d.Outcomes {
			out.Outcomes[k] = v
		}
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the step.
func (s StepDefinition) Clone() StepDefinition {
	out := s
	out.Validators = append([]string(nil), s.Validators...)
	if s.Fields != nil {
		out.Fields = make([]FieldDefinition, len(s.Fields))
		for i, field := range s.Fields {
			field.Options = append([]string(nil), field.Options...)
			out.Fields[i] = field
		}
	}
	return out
}
