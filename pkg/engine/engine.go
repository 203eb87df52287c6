// Package engine schedules and runs a compiled graph: a work queue of
// ready node indices, one goroutine per in-flight node, a mutex-guarded
// State, and context cancellation for fail-fast halting and per-node
// timeouts. It is the only blocking entry point in this module - every
// other package (resolver, mapping, condition, wfvalidate, compiler) is
// pure and synchronous.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/dukex/wf-runtime/pkg/compiler"
	"github.com/dukex/wf-runtime/pkg/condition"
	"github.com/dukex/wf-runtime/pkg/errorkind"
	"github.com/dukex/wf-runtime/pkg/errs"
	"github.com/dukex/wf-runtime/pkg/log"
	"github.com/dukex/wf-runtime/pkg/mapping"
	"github.com/dukex/wf-runtime/pkg/registry"
	"github.com/dukex/wf-runtime/pkg/resolver"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

const (
	statusPending = iota
	statusReady
	statusDone
	statusSkipped
)

type nodeState struct {
	pending int
	alive   int
	status  int
}

type run struct {
	g        *compiler.Graph
	wf       *wfmodel.Workflow
	reg      *registry.Registry
	state    *State
	failFast bool
	runID    string
	logger   *slog.Logger

	mu     sync.Mutex
	nodes  []nodeState
	halted bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Run executes wf's compiled graph g against input and returns the
// assembled Result once every dispatched node has finished. reg supplies
// the Executor for every non-router node kind.
func Run(ctx context.Context, g *compiler.Graph, wf *wfmodel.Workflow, reg *registry.Registry, input map[string]any) (*Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID := uuid.New().String()
	logger := log.WithRun(runID, wf.ID)

	r := &run{
		g:        g,
		wf:       wf,
		reg:      reg,
		state:    newState(input),
		failFast: wf.FailFastEnabled(),
		runID:    runID,
		logger:   logger,
		nodes:    make([]nodeState, len(g.Nodes)),
		ctx:      runCtx,
		cancel:   cancel,
	}

	for i := range r.nodes {
		r.nodes[i].pending = g.InDegree(i)
	}

	logger.Info("run started", "fail_fast", r.failFast)

	r.dispatch(g.StartIdx)
	r.wg.Wait()

	result := r.state.snapshotResult()
	result.RunID = runID

	logger.Info("run finished", "error_count", len(result.Errors))

	return result, nil
}

func (r *run) dispatch(idx int) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.runNode(idx)
	}()
}

func (r *run) runNode(idx int) {
	gn := r.g.Nodes[idx]

	if gn.ID == compiler.StartID {
		r.resolveOutgoing(idx, false, "", false)

		return
	}

	skipped := r.haltedNow()
	if skipped {
		r.resolveOutgoing(idx, true, "", false)

		return
	}

	if gn.ID == compiler.EndID {
		r.runEnd()
		r.resolveOutgoing(idx, false, "", false)

		return
	}

	if gn.Spec.Kind == wfmodel.KindRouter {
		label, ok := r.runRouter(idx, gn.Spec)
		r.resolveOutgoing(idx, false, label, ok)

		return
	}

	r.runExecutorNode(idx, gn.Spec)
	r.resolveOutgoing(idx, false, "", false)
}

func (r *run) haltedNow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.halted
}

func (r *run) nodeCtx(spec *wfmodel.NodeSpec) (context.Context, context.CancelFunc) {
	if spec.TimeoutS == nil {
		return r.ctx, func() {}
	}

	return context.WithTimeout(r.ctx, time.Duration(*spec.TimeoutS*float64(time.Second)))
}

func (r *run) runExecutorNode(idx int, spec *wfmodel.NodeSpec) {
	snap := r.state.Snapshot()

	resolvedInput, err := mapping.ResolveInputMapping(snap, spec.InputMapping, strictnessFor(spec.Kind))
	if err != nil {
		r.fail(spec.ID, errorkind.Reference, err)

		return
	}

	ex, err := r.reg.Get(spec.Kind)
	if err != nil {
		r.fail(spec.ID, errorkind.Validation, err)

		return
	}

	nodeCtx, cancel := r.nodeCtx(spec)
	defer cancel()

	raw, err := ex.Execute(nodeCtx, resolvedInput, spec.Config)
	if err != nil {
		if nodeCtx.Err() == context.DeadlineExceeded {
			r.fail(spec.ID, errorkind.Timeout, err)
		} else {
			r.fail(spec.ID, errorkind.Executor, err)
		}

		return
	}

	shaped, err := mapping.ApplyOutputMapping(spec.OutputMapping, raw)
	if err != nil {
		r.fail(spec.ID, errorkind.Mapping, err)

		return
	}

	r.state.writeData(spec.ID, shaped)
}

// runRouter picks a case via the condition evaluator, in declaration
// order, falling back to the default label if none match. It returns
// the selected label and whether one was found at all.
func (r *run) runRouter(idx int, spec *wfmodel.NodeSpec) (string, bool) {
	snap := r.state.Snapshot()

	label, err := pickRoute(spec, snap)
	if err != nil {
		r.fail(spec.ID, errorkind.Condition, err)

		return "", false
	}

	if label == "" {
		r.fail(spec.ID, errorkind.RouterNoMatch, fmt.Errorf("router %q: no case matched and no default is set", spec.ID))

		return "", false
	}

	raw := map[string]any{"label": label}

	shaped, err := mapping.ApplyOutputMapping(spec.OutputMapping, raw)
	if err != nil {
		r.fail(spec.ID, errorkind.Mapping, err)

		return "", false
	}

	r.state.writeData(spec.ID, shaped)
	r.state.setRouterLabel(spec.ID, label)

	return label, true
}

// pickRoute evaluates spec.Cases in declaration order and returns the
// first matching label. A runtime evaluation error on a single case is
// treated as that case being unsatisfied, never as fatal to the run.
func pickRoute(spec *wfmodel.NodeSpec, snap resolver.Snapshot) (string, error) {
	for _, c := range spec.Cases {
		prog, err := condition.Compile(c.Condition)
		if err != nil {
			return "", fmt.Errorf("router %q case %q: %w", spec.ID, c.Label, err)
		}

		ok, err := condition.Eval(prog, snap)
		if err != nil {
			continue
		}

		if ok {
			return c.Label, nil
		}
	}

	return spec.Default, nil
}

func (r *run) runEnd() {
	snap := r.state.Snapshot()

	outputs, err := mapping.ResolveInputMapping(snap, r.wf.Output.InputMapping, resolver.Strict)
	if err != nil {
		r.fail(compiler.EndID, errorkind.Reference, err)

		return
	}

	if r.wf.Output.Schema != nil {
		if verr := validateAgainstSchema(outputs, r.wf.Output.Schema); verr != nil {
			r.fail(compiler.EndID, errorkind.OutputSchema, verr)

			return
		}
	}

	r.state.setOutput(outputs)
}

func validateAgainstSchema(instance any, schema map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	docLoader := gojsonschema.NewGoLoader(instance)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return fmt.Errorf("schema validation failed: %v", msgs)
	}

	return nil
}

func (r *run) fail(nodeID string, kind errorkind.Kind, err error) {
	ce := errs.New("engine.run", kind, nodeID, err)

	r.state.appendError(wfmodel.ErrorRecord{NodeID: nodeID, Kind: string(kind), Message: ce.Message()})
	r.logger.Error(ce.Error(), "node_id", nodeID, "fail_fast", r.failFast)

	if r.failFast {
		r.mu.Lock()
		r.halted = true
		r.mu.Unlock()
		r.cancel()
	}
}

// resolveOutgoing propagates the completion of node idx to its
// successors: each outgoing edge is "alive" unless idx was itself
// skipped, or the edge is conditional and its when_label does not match
// idx's selected router label. A successor whose predecessor count
// reaches zero with zero alive edges is skipped, which cascades.
func (r *run) resolveOutgoing(idx int, skipped bool, selectedLabel string, hasLabel bool) {
	ready, newlySkipped := r.settleEdges(idx, skipped, selectedLabel, hasLabel)

	for len(newlySkipped) > 0 {
		n := newlySkipped[0]
		newlySkipped = newlySkipped[1:]

		more, moreSkipped := r.settleEdges(n, true, "", false)
		ready = append(ready, more...)
		newlySkipped = append(newlySkipped, moreSkipped...)
	}

	for _, next := range ready {
		if r.haltedNow() {
			continue
		}

		r.dispatch(next)
	}
}

func (r *run) settleEdges(idx int, skipped bool, selectedLabel string, hasLabel bool) (ready, newlySkipped []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.g.OutEdges(idx) {
		alive := false

		if !skipped {
			switch {
			case e.WhenLabel == "":
				alive = true
			case hasLabel && e.WhenLabel == selectedLabel:
				alive = true
			}
		}

		ns := &r.nodes[e.To]
		ns.pending--

		if alive {
			ns.alive++
		}

		if ns.pending == 0 && ns.status == statusPending {
			if ns.alive > 0 {
				ns.status = statusReady
				ready = append(ready, e.To)
			} else {
				ns.status = statusSkipped
				newlySkipped = append(newlySkipped, e.To)
			}
		}
	}

	return ready, newlySkipped
}

func strictnessFor(kind string) resolver.Mode {
	if kind == wfmodel.KindJQTransform {
		return resolver.NonStrict
	}

	return resolver.Strict
}
