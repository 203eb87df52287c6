// Package compiler turns a validated workflow document into an
// adjacency-list Graph: implicit start/end nodes are synthesized,
// BranchEdges are flattened into per-route edges, and the result is
// checked for cycles. Indices, not pointers, identify nodes - the
// engine schedules by index into Graph.Nodes.
package compiler

import (
	"fmt"

	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

const (
	StartID = "start"
	EndID   = "end"
)

// GraphNode is one node in the compiled graph. Spec is nil for the
// synthetic start/end nodes.
type GraphNode struct {
	ID   string
	Spec *wfmodel.NodeSpec
}

// GraphEdge is a flattened edge: a BranchEdge with N routes becomes N
// GraphEdges, one per route, each carrying that route's when_label.
// flattenEdge below performs this expansion ahead of graph
// construction.
type GraphEdge struct {
	From, To  int
	WhenLabel string // empty for an unconditional edge
}

// Graph is the compiled form of a workflow.
type Graph struct {
	Nodes    []GraphNode
	Edges    []GraphEdge
	indexOf  map[string]int
	outEdges [][]int // outEdges[i] = indices into Edges with From == i
	inEdges  [][]int // inEdges[i] = indices into Edges with To == i
	StartIdx int
	EndIdx   int
}

// IndexOf returns the node index for id, if declared.
func (g *Graph) IndexOf(id string) (int, bool) {
	idx, ok := g.indexOf[id]

	return idx, ok
}

// OutEdges returns the edges leaving node idx.
func (g *Graph) OutEdges(idx int) []GraphEdge {
	out := make([]GraphEdge, len(g.outEdges[idx]))
	for i, e := range g.outEdges[idx] {
		out[i] = g.Edges[e]
	}

	return out
}

// InDegree returns the number of edges entering node idx.
func (g *Graph) InDegree(idx int) int {
	return len(g.inEdges[idx])
}

// Compile validates-by-construction and produces a Graph. Callers are
// expected to have already run wfvalidate.Validate; Compile only checks
// what it must to build a consistent adjacency structure (id resolution
// and acyclicity).
func Compile(wf *wfmodel.Workflow) (*Graph, error) {
	g := &Graph{indexOf: make(map[string]int, len(wf.Nodes)+2)}

	g.addNode(StartID, nil)

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if _, dup := g.indexOf[n.ID]; dup {
			return nil, fmt.Errorf("compiler: duplicate node id %q", n.ID)
		}

		g.addNode(n.ID, n)
	}

	g.addNode(EndID, nil)

	g.StartIdx = g.indexOf[StartID]
	g.EndIdx = g.indexOf[EndID]

	g.outEdges = make([][]int, len(g.Nodes))
	g.inEdges = make([][]int, len(g.Nodes))

	for _, e := range wf.Edges {
		for _, flat := range flattenEdge(e) {
			if err := g.addEdge(flat); err != nil {
				return nil, err
			}
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Graph) addNode(id string, spec *wfmodel.NodeSpec) {
	g.indexOf[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, GraphNode{ID: id, Spec: spec})
}

type flatEdge struct {
	from, to, whenLabel string
}

// flattenEdge turns a SimpleEdge into a single flatEdge and a BranchEdge
// into one flatEdge per route.
func flattenEdge(e wfmodel.Edge) []flatEdge {
	if e.IsBranch() {
		out := make([]flatEdge, 0, len(e.Routes))
		for _, r := range e.Routes {
			out = append(out, flatEdge{from: e.From, to: r.To, whenLabel: r.WhenLabel})
		}

		return out
	}

	return []flatEdge{{from: e.From, to: e.To, whenLabel: e.WhenLabel}}
}

func (g *Graph) addEdge(fe flatEdge) error {
	fromIdx, ok := g.indexOf[fe.from]
	if !ok {
		return fmt.Errorf("compiler: edge 'from' %q is not a declared node", fe.from)
	}

	toIdx, ok := g.indexOf[fe.to]
	if !ok {
		return fmt.Errorf("compiler: edge 'to' %q is not a declared node", fe.to)
	}

	idx := len(g.Edges)
	g.Edges = append(g.Edges, GraphEdge{From: fromIdx, To: toIdx, WhenLabel: fe.whenLabel})
	g.outEdges[fromIdx] = append(g.outEdges[fromIdx], idx)
	g.inEdges[toIdx] = append(g.inEdges[toIdx], idx)

	return nil
}

// checkAcyclic rejects any structural cycle in the declared graph via
// three-color DFS. Conditional routing is not a cycle (the engine prunes
// branches at runtime); it is only ever a problem if the *declared*
// edges loop back on themselves regardless of which labels fire.
func (g *Graph) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.Nodes))

	var visit func(idx int) error

	visit = func(idx int) error {
		color[idx] = gray

		for _, eIdx := range g.outEdges[idx] {
			next := g.Edges[eIdx].To

			switch color[next] {
			case gray:
				return fmt.Errorf("compiler: cycle detected at node %q", g.Nodes[next].ID)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}

		color[idx] = black

		return nil
	}

	for i := range g.Nodes {
		if color[i] == white {
			if err := visit(i); err != nil {
				return err
			}
		}
	}

	return nil
}
