// Package noop implements the "noop" node kind: it passes its resolved
// input straight through as its raw result, useful as a join point or a
// placeholder while a graph is under construction.
package noop

import "context"

// Executor implements protocol.Executor for the "noop" kind.
type Executor struct{}

func New() *Executor { return &Executor{} }

func (*Executor) Execute(_ context.Context, input map[string]any, _ map[string]any) (any, error) {
	return input, nil
}
