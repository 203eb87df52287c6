// Package errs provides the core's wrapped error type: an operation
// name, a taxonomy kind, and the wrapped cause.
package errs

import (
	"errors"
	"fmt"

	"github.com/dukex/wf-runtime/pkg/errorkind"
)

// CoreError is the error core.Invoke returns for failures before
// execution, and the engine builds one for every failure it records.
// NodeID is empty for run-level and compile-time errors.
type CoreError struct {
	Op     string
	Kind   errorkind.Kind
	NodeID string
	Err    error
}

func New(op string, kind errorkind.Kind, nodeID string, err error) *CoreError {
	return &CoreError{Op: op, Kind: kind, NodeID: nodeID, Err: err}
}

func (e *CoreError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s (node %q): %v", e.Op, e.Kind, e.NodeID, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two CoreErrors with the same Kind, regardless
// of wrapped cause or node id.
func (e *CoreError) Is(target error) bool {
	var other *CoreError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}

	return false
}

// IsKind reports whether err is, or wraps, a CoreError of the given kind.
func IsKind(err error, kind errorkind.Kind) bool {
	var ce *CoreError
	if !errors.As(err, &ce) {
		return false
	}

	return ce.Kind == kind
}

// Message returns the wrapped cause's message, for building an
// ErrorRecord without exposing CoreError's own formatting.
func (e *CoreError) Message() string {
	return e.Err.Error()
}
