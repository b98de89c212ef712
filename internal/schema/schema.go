// Package schema checks authored area documents against the embedded
// area.schema.json before they reach the strict decoder.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed area.schema.json
var areaSchema []byte

const areaSchemaURL = "area.schema.json"

var ErrInvalidDocument = errors.New("invalid area document")

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Validator validates YAML area documents. The zero value is not usable;
// call New.
type Validator struct {
	schema *jsonschema.Schema
}

// New returns a validator backed by the embedded schema, compiled once per process.
func New() (*Validator, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(areaSchemaURL, bytes.NewReader(areaSchema)); err != nil {
			compileErr = fmt.Errorf("add %s: %w", areaSchemaURL, err)
			return
		}
		compiled, compileErr = c.Compile(areaSchemaURL)
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return &Validator{schema: compiled}, nil
}

// ValidateYAML converts raw to its JSON data model and validates it.
func (v *Validator) ValidateYAML(raw []byte) error {
	doc, err := toJSON(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func toJSON(raw []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
