package wfvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

type fakeRegistry struct{ kinds map[string]bool }

func (f *fakeRegistry) Has(kind string) bool { return f.kinds[kind] }

func validWorkflow() *wfmodel.Workflow {
	return &wfmodel.Workflow{
		ID:      "wf1",
		Version: 1,
		Nodes: []wfmodel.NodeSpec{
			{ID: "sum", Kind: "noop", InputMapping: map[string]any{"x": "$input.x"}},
		},
		Edges: []wfmodel.Edge{
			{From: "start", To: "sum"},
			{From: "sum", To: "end"},
		},
		Output: wfmodel.OutputSpec{InputMapping: map[string]any{"total": "$nodes.sum.x"}},
	}
}

func TestValidate_WellFormedWorkflowPasses(t *testing.T) {
	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}

	res := Validate(validWorkflow(), reg)
	require.True(t, res.OK, "%v", res.Problems)
}

func TestValidate_ReservedNodeID(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes[0].ID = "start"

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_UnknownEdgeTarget(t *testing.T) {
	wf := validWorkflow()
	wf.Edges = append(wf.Edges, wfmodel.Edge{From: "sum", To: "ghost"})

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_ConditionalEdgeFromNonRouter(t *testing.T) {
	wf := validWorkflow()
	wf.Edges[1].WhenLabel = "yes"

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_NoEdgeFromStart(t *testing.T) {
	wf := validWorkflow()
	wf.Edges = wf.Edges[1:]

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_EndUnreachable(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, wfmodel.NodeSpec{ID: "dangling", Kind: "noop"})
	wf.Edges = []wfmodel.Edge{{From: "start", To: "sum"}, {From: "sum", To: "dangling"}}

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_UnknownNodeReference(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes[0].InputMapping["x"] = "$nodes.ghost.value"

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_InvalidConditionSyntax(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, wfmodel.NodeSpec{
		ID:   "route",
		Kind: wfmodel.KindRouter,
		Cases: wfmodel.CaseList{
			{Label: "bad", Condition: "import os"},
		},
		Default: "else",
	})

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_UnregisteredKind(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes[0].Kind = "http_request"

	reg := &fakeRegistry{kinds: map[string]bool{}}
	res := Validate(wf, reg)

	assert.False(t, res.OK)
}

func TestValidate_RouterDefaultIsALabelNotACondition(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, wfmodel.NodeSpec{
		ID:   "route",
		Kind: wfmodel.KindRouter,
		Cases: wfmodel.CaseList{
			{Label: "match", Condition: "$input.x > 0"},
		},
		Default: "fallback",
	})
	wf.Edges = append(wf.Edges,
		wfmodel.Edge{From: "route", To: "sum", WhenLabel: "match"},
		wfmodel.Edge{From: "route", To: "sum", WhenLabel: "fallback"},
	)

	reg := &fakeRegistry{kinds: map[string]bool{"noop": true}}
	res := Validate(wf, reg)

	assert.True(t, res.OK, "%v", res.Problems)
}

func TestValidate_RouterKindNeverRequiresRegistration(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes[0].Kind = wfmodel.KindRouter
	wf.Nodes[0].Default = "else"
	wf.Nodes[0].InputMapping = nil

	reg := &fakeRegistry{kinds: map[string]bool{}}
	res := Validate(wf, reg)

	assert.True(t, res.OK, "%v", res.Problems)
}
