// Package document decodes a workflow document from YAML or JSON and
// checks its shape: unknown top-level keys are rejected before
// struct-decoding, and go-playground/validator/v10 enforces the
// struct-tag constraints declared on wfmodel.Workflow (required fields,
// dive-validated node/edge slices).
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

var knownTopLevelKeys = map[string]bool{
	"id": true, "version": true, "input": true, "nodes": true,
	"edges": true, "output": true, "fail_fast": true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Format selects which decoder Decode uses.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Decode parses data as format, rejects unknown top-level keys, decodes it
// into a wfmodel.Workflow, and runs struct-tag validation over the
// result. The returned error, when non-nil, already names the offending
// field or key.
func Decode(data []byte, format Format) (*wfmodel.Workflow, error) {
	if err := checkUnknownKeys(data, format); err != nil {
		return nil, err
	}

	wf := &wfmodel.Workflow{}

	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, wf)
	case FormatJSON:
		err = json.Unmarshal(data, wf)
	default:
		return nil, fmt.Errorf("document: unknown format %v", format)
	}

	if err != nil {
		return nil, fmt.Errorf("document: decoding: %w", err)
	}

	if err := validate.Struct(wf); err != nil {
		return nil, fmt.Errorf("document: struct validation: %w", err)
	}

	return wf, nil
}

func checkUnknownKeys(data []byte, format Format) error {
	raw := map[string]any{}

	var err error

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}

	if err != nil {
		return fmt.Errorf("document: decoding: %w", err)
	}

	for k := range raw {
		if !knownTopLevelKeys[k] {
			return fmt.Errorf("document: unknown top-level key %q", k)
		}
	}

	return nil
}
