// Package core exposes the two package-level entry points a caller
// needs: Validate and Invoke. Both compose the lower layers in the
// same dependency order the rest of the module is built in: document
// decode (by the caller) -> wfvalidate -> compiler -> engine.
package core

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dukex/wf-runtime/pkg/compiler"
	"github.com/dukex/wf-runtime/pkg/engine"
	"github.com/dukex/wf-runtime/pkg/errorkind"
	"github.com/dukex/wf-runtime/pkg/errs"
	"github.com/dukex/wf-runtime/pkg/registry"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
	"github.com/dukex/wf-runtime/pkg/wfvalidate"
)

// Validate runs the workflow-level semantic checks against wf and
// returns the result. It never compiles or executes the workflow.
func Validate(wf *wfmodel.Workflow, reg *registry.Registry) *wfvalidate.Result {
	return wfvalidate.Validate(wf, reg)
}

// Invoke validates wf, checks input against wf.Input.Schema, compiles
// the graph, and runs it to completion. A non-nil error here means wf
// never reached execution (validation/compile failure); a populated
// Result.Errors with a nil error means the run executed but recorded
// node-level or run-level failures along the way.
func Invoke(ctx context.Context, wf *wfmodel.Workflow, reg *registry.Registry, input map[string]any) (*engine.Result, error) {
	if res := wfvalidate.Validate(wf, reg); !res.OK {
		return nil, errs.New("core.Invoke", errorkind.Validation, "", fmt.Errorf("%v", res.Problems))
	}

	if wf.Input.Schema != nil {
		if err := validateInput(input, wf.Input.Schema); err != nil {
			return nil, errs.New("core.Invoke", errorkind.Validation, "", err)
		}
	}

	g, err := compiler.Compile(wf)
	if err != nil {
		return nil, errs.New("core.Invoke", errorkind.Compile, "", err)
	}

	return engine.Run(ctx, g, wf, reg, input)
}

func validateInput(input map[string]any, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	docLoader := gojsonschema.NewGoLoader(input)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return fmt.Errorf("input does not conform to input.schema: %v", msgs)
	}

	return nil
}
