// Package wfvalidate implements the project's semantic checks on a
// decoded workflow document (reserved ids, edge shape, reference
// well-formedness, condition syntax, kind registration). It is distinct
// from the go-playground/validator struct-tag checks the document
// package runs first - those catch malformed documents, this catches
// malformed *workflows*.
package wfvalidate

import (
	"fmt"
	"regexp"

	"github.com/dukex/wf-runtime/pkg/condition"
	"github.com/dukex/wf-runtime/pkg/resolver"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

// Problem is one validation failure.
type Problem struct {
	Code    string
	Message string
}

// Result is the outcome of validating a workflow document.
type Result struct {
	OK       bool
	Problems []Problem
}

func (r *Result) add(code, format string, args ...any) {
	r.OK = false
	r.Problems = append(r.Problems, Problem{Code: code, Message: fmt.Sprintf(format, args...)})
}

// KindRegistry is the subset of registry.Registry the validator needs;
// accepting an interface here keeps this package from depending on the
// registry package's concrete type.
type KindRegistry interface {
	Has(kind string) bool
}

var nodeIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

const (
	reservedStart = "start"
	reservedEnd   = "end"
)

// Validate runs checks 1-9 against wf. It never panics on a malformed
// workflow; every problem is collected rather than short-circuiting, so
// callers see the full list of what is wrong.
func Validate(wf *wfmodel.Workflow, reg KindRegistry) *Result {
	res := &Result{OK: true}

	checkTopLevel(wf, res)
	nodeIDs := checkNodeIDs(wf, res)
	checkEdgesReferenceDeclaredNodes(wf, nodeIDs, res)
	checkConditionalEdges(wf, nodeIDs, res)
	checkStartHasOutgoingEdge(wf, res)
	checkEndReachable(wf, res)
	checkNodeReferencesDeclared(wf, nodeIDs, res)
	checkReferenceAndConditionSyntax(wf, res)
	checkKindsRegistered(wf, reg, res)

	return res
}

// 1. Required top-level fields are present and output.schema, when set,
// describes an object.
func checkTopLevel(wf *wfmodel.Workflow, res *Result) {
	if wf.ID == "" {
		res.add("missing_id", "workflow is missing required field 'id'")
	}

	if len(wf.Nodes) == 0 {
		res.add("no_nodes", "workflow declares no nodes")
	}

	if len(wf.Edges) == 0 {
		res.add("no_edges", "workflow declares no edges")
	}

	if wf.Output.Schema != nil {
		if t, ok := wf.Output.Schema["type"]; ok && t != "object" {
			res.add("output_schema_type", "output.schema must describe an object, got %v", t)
		}
	}
}

// 2. Node ids are well-formed, unique, and not reserved.
func checkNodeIDs(wf *wfmodel.Workflow, res *Result) map[string]*wfmodel.NodeSpec {
	nodeIDs := make(map[string]*wfmodel.NodeSpec, len(wf.Nodes))

	for i := range wf.Nodes {
		n := &wf.Nodes[i]

		if n.ID == reservedStart || n.ID == reservedEnd {
			res.add("reserved_node_id", "node id %q is reserved", n.ID)

			continue
		}

		if !nodeIDPattern.MatchString(n.ID) {
			res.add("invalid_node_id", "node id %q does not match ^[a-z][a-z0-9_]*$", n.ID)

			continue
		}

		if _, dup := nodeIDs[n.ID]; dup {
			res.add("duplicate_node_id", "node id %q is declared more than once", n.ID)

			continue
		}

		nodeIDs[n.ID] = n
	}

	return nodeIDs
}

func validTargets(nodeIDs map[string]*wfmodel.NodeSpec) map[string]bool {
	targets := make(map[string]bool, len(nodeIDs)+2)
	targets[reservedStart] = true
	targets[reservedEnd] = true

	for id := range nodeIDs {
		targets[id] = true
	}

	return targets
}

// 3. Every edge endpoint names start, end, or a declared node.
func checkEdgesReferenceDeclaredNodes(wf *wfmodel.Workflow, nodeIDs map[string]*wfmodel.NodeSpec, res *Result) {
	targets := validTargets(nodeIDs)

	for _, e := range wf.Edges {
		if e.From != reservedStart && !targets[e.From] {
			res.add("unknown_edge_from", "edge 'from' %q is not start or a declared node", e.From)
		}

		if e.IsBranch() == (e.To != "") {
			res.add("invalid_edge_shape", "edge from %q must set exactly one of 'to' or 'routes'", e.From)
		}

		if e.IsBranch() {
			for _, route := range e.Routes {
				if !targets[route.To] {
					res.add("unknown_edge_to", "branch edge route 'to' %q is not end or a declared node", route.To)
				}
			}

			continue
		}

		if e.To != "" && !targets[e.To] {
			res.add("unknown_edge_to", "edge 'to' %q is not end or a declared node", e.To)
		}
	}
}

// 4. Conditional edges (when_label set, or any BranchEdge route) only
// emanate from router nodes, and every when_label names a declared
// case label or the router's default.
func checkConditionalEdges(wf *wfmodel.Workflow, nodeIDs map[string]*wfmodel.NodeSpec, res *Result) {
	for _, e := range wf.Edges {
		labels := edgeLabels(e)
		if len(labels) == 0 {
			continue
		}

		src, ok := nodeIDs[e.From]
		if !ok {
			continue // already reported by check 3
		}

		if src.Kind != wfmodel.KindRouter {
			res.add("conditional_edge_non_router", "edge from %q carries a when_label but %q is not a router node", e.From, e.From)

			continue
		}

		allowed := make(map[string]bool, len(src.Cases)+1)
		for _, c := range src.Cases {
			allowed[c.Label] = true
		}

		if src.Default != "" {
			allowed[src.Default] = true
		}

		for _, label := range labels {
			if !allowed[label] {
				res.add("unknown_when_label", "edge from router %q uses when_label %q which is not a declared case or the default", e.From, label)
			}
		}
	}
}

func edgeLabels(e wfmodel.Edge) []string {
	if e.IsBranch() {
		labels := make([]string, 0, len(e.Routes))
		for _, r := range e.Routes {
			labels = append(labels, r.WhenLabel)
		}

		return labels
	}

	if e.WhenLabel != "" {
		return []string{e.WhenLabel}
	}

	return nil
}

// 5. At least one edge starts at start.
func checkStartHasOutgoingEdge(wf *wfmodel.Workflow, res *Result) {
	for _, e := range wf.Edges {
		if e.From == reservedStart {
			return
		}
	}

	res.add("no_edge_from_start", "workflow has no edge from 'start'")
}

// 6. end is reachable from start via the declared edges.
func checkEndReachable(wf *wfmodel.Workflow, res *Result) {
	adj := make(map[string][]string)

	for _, e := range wf.Edges {
		if e.IsBranch() {
			for _, r := range e.Routes {
				adj[e.From] = append(adj[e.From], r.To)
			}

			continue
		}

		if e.To != "" {
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	seen := map[string]bool{reservedStart: true}
	queue := []string{reservedStart}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == reservedEnd {
			return
		}

		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true

				queue = append(queue, next)
			}
		}
	}

	res.add("end_unreachable", "workflow has no path from 'start' to 'end'")
}

// 7. Every $nodes.<id> reference (in mappings or conditions) names a
// declared node.
func checkNodeReferencesDeclared(wf *wfmodel.Workflow, nodeIDs map[string]*wfmodel.NodeSpec, res *Result) {
	check := func(context string, s string) {
		ref, err := resolver.Parse(s)
		if err != nil {
			return // reported by check 8
		}

		if ref.NodeID != "" {
			if _, ok := nodeIDs[ref.NodeID]; !ok {
				res.add("unknown_node_reference", "%s references undeclared node %q", context, ref.NodeID)
			}
		}
	}

	walkWorkflowReferences(wf, check)

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Kind != wfmodel.KindRouter {
			continue
		}

		for _, c := range n.Cases {
			prog, err := condition.Compile(c.Condition)
			if err != nil {
				continue // reported by check 8
			}

			for _, raw := range prog.Refs {
				check(fmt.Sprintf("router %q case %q", n.ID, c.Label), raw)
			}
		}
	}
}

// 8. Every reference string in the document is syntactically valid, and
// every router case condition compiles under the restricted condition
// grammar. default is a plain case label, not a condition, and is left
// to check 4 (allowed[src.Default]).
func checkReferenceAndConditionSyntax(wf *wfmodel.Workflow, res *Result) {
	walkWorkflowReferences(wf, func(context string, s string) {
		if _, err := resolver.Parse(s); err != nil {
			res.add("invalid_reference_syntax", "%s: %v", context, err)
		}
	})

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Kind != wfmodel.KindRouter {
			continue
		}

		for _, c := range n.Cases {
			if _, err := condition.Compile(c.Condition); err != nil {
				res.add("invalid_condition_syntax", "router %q case %q: %v", n.ID, c.Label, err)
			}
		}
	}
}

// walkWorkflowReferences calls fn for every string value in every node's
// input_mapping and the workflow's output.input_mapping that begins with
// "$" (i.e. every candidate reference expression).
func walkWorkflowReferences(wf *wfmodel.Workflow, fn func(context string, s string)) {
	for i := range wf.Nodes {
		n := &wf.Nodes[i]

		for key, v := range n.InputMapping {
			if s, ok := v.(string); ok && resolver.IsRef(s) {
				fn(fmt.Sprintf("node %q input_mapping[%q]", n.ID, key), s)
			}
		}
	}

	for key, v := range wf.Output.InputMapping {
		if s, ok := v.(string); ok && resolver.IsRef(s) {
			fn(fmt.Sprintf("output.input_mapping[%q]", key), s)
		}
	}
}

// 9. Every node kind has a registered executor, except router, which
// the engine orchestrates directly rather than dispatching.
func checkKindsRegistered(wf *wfmodel.Workflow, reg KindRegistry, res *Result) {
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Kind == wfmodel.KindRouter {
			continue
		}

		if reg == nil || !reg.Has(n.Kind) {
			res.add("kind_not_registered", "node %q has kind %q which has no registered executor", n.ID, n.Kind)
		}
	}
}
