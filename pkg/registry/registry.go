// Package registry holds the kind->Executor bindings the engine
// dispatches user nodes through: a single register-by-key map, since
// every node kind shares one collaborator shape (protocol.Executor).
package registry

import (
	"fmt"
	"sync"

	"github.com/dukex/wf-runtime/pkg/protocol"
)

type Registry struct {
	mu        sync.RWMutex
	executors map[string]protocol.Executor
}

func New() *Registry {
	return &Registry{executors: make(map[string]protocol.Executor)}
}

// Register binds kind to ex, overwriting any previous binding.
func (r *Registry) Register(kind string, ex protocol.Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.executors[kind] = ex
}

// Lookup returns the executor bound to kind, if any.
func (r *Registry) Lookup(kind string) (protocol.Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ex, ok := r.executors[kind]

	return ex, ok
}

// Has reports whether kind has a registered executor.
func (r *Registry) Has(kind string) bool {
	_, ok := r.Lookup(kind)

	return ok
}

// Get is like Lookup but returns an error naming the missing kind.
func (r *Registry) Get(kind string) (protocol.Executor, error) {
	ex, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("registry: node kind %q not registered", kind)
	}

	return ex, nil
}
