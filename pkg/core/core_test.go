package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/wf-runtime/pkg/executors/noop"
	"github.com/dukex/wf-runtime/pkg/registry"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

func simpleWorkflow() *wfmodel.Workflow {
	return &wfmodel.Workflow{
		ID: "wf1", Version: 1,
		Input: wfmodel.InputSpec{Schema: map[string]any{
			"type":     "object",
			"required": []any{"x"},
		}},
		Nodes: []wfmodel.NodeSpec{
			{ID: "pass", Kind: "noop", InputMapping: map[string]any{"x": "$input.x"}},
		},
		Edges: []wfmodel.Edge{{From: "start", To: "pass"}, {From: "pass", To: "end"}},
		Output: wfmodel.OutputSpec{InputMapping: map[string]any{"x": "$nodes.pass.x"}},
	}
}

func TestValidate_ReturnsOKForWellFormedWorkflow(t *testing.T) {
	reg := registry.New()
	reg.Register("noop", noop.New())

	res := Validate(simpleWorkflow(), reg)
	assert.True(t, res.OK, "%v", res.Problems)
}

func TestInvoke_RunsToCompletion(t *testing.T) {
	reg := registry.New()
	reg.Register("noop", noop.New())

	result, err := Invoke(context.Background(), simpleWorkflow(), reg, map[string]any{"x": float64(5)})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, map[string]any{"x": float64(5)}, result.Output)
}

func TestInvoke_RejectsInputViolatingSchema(t *testing.T) {
	reg := registry.New()
	reg.Register("noop", noop.New())

	_, err := Invoke(context.Background(), simpleWorkflow(), reg, map[string]any{})
	assert.Error(t, err)
}

func TestInvoke_RejectsInvalidWorkflowBeforeExecuting(t *testing.T) {
	wf := simpleWorkflow()
	wf.Nodes[0].ID = "end" // reserved

	_, err := Invoke(context.Background(), wf, registry.New(), map[string]any{"x": float64(1)})
	assert.Error(t, err)
}
