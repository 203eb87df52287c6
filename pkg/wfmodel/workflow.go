// Package wfmodel defines the document shape of a workflow: the
// top-level Workflow, its nodes and edges, and the runtime error record
// shape produced during execution.
package wfmodel

// Workflow is the root of a workflow document.
type Workflow struct {
	ID       string     `yaml:"id"                json:"id"                validate:"required"`
	Version  int        `yaml:"version"            json:"version"           validate:"required,min=1"`
	Input    InputSpec  `yaml:"input"              json:"input"`
	Nodes    []NodeSpec `yaml:"nodes"              json:"nodes"             validate:"required,min=1,dive"`
	Edges    []Edge     `yaml:"edges"              json:"edges"             validate:"required,min=1,dive"`
	Output   OutputSpec `yaml:"output"             json:"output"`
	FailFast *bool      `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
}

// FailFastEnabled returns the effective fail_fast setting, defaulting to
// true when the document omits it.
func (w *Workflow) FailFastEnabled() bool {
	if w.FailFast == nil {
		return true
	}

	return *w.FailFast
}

// InputSpec describes the shape of the data a run is invoked with.
type InputSpec struct {
	Schema map[string]any `yaml:"schema" json:"schema"`
}

// OutputSpec describes how the final run output is assembled from
// workflow state and what shape it must conform to.
type OutputSpec struct {
	InputMapping map[string]any `yaml:"input_mapping" json:"input_mapping"`
	Schema       map[string]any `yaml:"schema"         json:"schema"`
}

// Edge is either a SimpleEdge (To set) or a BranchEdge (Routes set).
// Exactly one of the two must be present; see wfvalidate for the check.
type Edge struct {
	From      string      `yaml:"from"                 json:"from"                 validate:"required"`
	To        string      `yaml:"to,omitempty"         json:"to,omitempty"`
	WhenLabel string      `yaml:"when_label,omitempty" json:"when_label,omitempty"`
	Routes    []EdgeRoute `yaml:"routes,omitempty"     json:"routes,omitempty"      validate:"dive"`
}

// EdgeRoute is one labeled branch of a BranchEdge.
type EdgeRoute struct {
	To        string `yaml:"to"         json:"to"         validate:"required"`
	WhenLabel string `yaml:"when_label" json:"when_label" validate:"required"`
}

// IsBranch reports whether the edge is a BranchEdge (has Routes rather
// than a single To).
func (e Edge) IsBranch() bool {
	return len(e.Routes) > 0
}

// ErrorRecord is the shape appended to a run's error list, identical
// for node-level and run-level failures.
type ErrorRecord struct {
	NodeID  string         `json:"node_id,omitempty"`
	Kind    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
