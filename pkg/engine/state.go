package engine

import (
	"sync"

	"github.com/dukex/wf-runtime/pkg/resolver"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

// State is the mutex-guarded run state every in-flight node goroutine
// reads from and writes to: published node data, the accumulated error
// list, and the label each router node selected.
type State struct {
	mu           sync.Mutex
	input        map[string]any
	data         map[string]any
	errors       []wfmodel.ErrorRecord
	routerLabels map[string]string
	output       any
	extra        map[string]any // $state.* bindings, exposed unconditionally
}

func newState(input map[string]any) *State {
	return &State{
		input:        input,
		data:         make(map[string]any),
		routerLabels: make(map[string]string),
		extra:        make(map[string]any),
	}
}

// Snapshot returns a point-in-time, lock-free view for the resolver.
// The maps are copied shallowly: resolver traversal never mutates them,
// and node outputs are only ever added wholesale, never mutated in
// place, so a shallow copy is safe to hand across goroutines.
func (s *State) Snapshot() resolver.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make(map[string]any, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}

	st := make(map[string]any, len(s.extra))
	for k, v := range s.extra {
		st[k] = v
	}

	labels := make(map[string]any, len(s.routerLabels))
	for k, v := range s.routerLabels {
		labels[k] = v
	}

	st["input"] = s.input
	st["data"] = data
	st["router_labels"] = labels
	st["errors"] = append([]wfmodel.ErrorRecord(nil), s.errors...)
	st["output"] = s.output

	return resolver.Snapshot{Input: s.input, Data: data, State: st}
}

func (s *State) writeData(id string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = v
}

func (s *State) setRouterLabel(id, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routerLabels[id] = label
}

func (s *State) appendError(rec wfmodel.ErrorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, rec)
}

func (s *State) setOutput(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = v
}

func (s *State) snapshotResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make([]wfmodel.ErrorRecord, len(s.errors))
	copy(errs, s.errors)

	return &Result{Output: s.output, Errors: errs}
}

// Result is what Run returns: the assembled output (nil if the end node
// never ran or its mapping/schema failed), every error recorded during
// the run in the order they occurred, and the run's correlation id.
type Result struct {
	RunID  string
	Output any
	Errors []wfmodel.ErrorRecord
}
