// Package resolver implements the reference grammar: $input(.path)?,
// $nodes.<id>(.path)?, and $state.<key>(.path)? expressions that appear
// inside input mappings and (after substitution) router conditions.
//
// Resolution never delegates to reflection or attribute access: path
// traversal only descends into map[string]any values, exactly as
// spec'd — a reference through a list, a scalar, or a missing key is
// either an error (strict mode) or resolves to nil (non-strict mode).
package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects strict (missing data is an error) or non-strict (missing
// data resolves to nil) resolution.
type Mode bool

const (
	Strict    Mode = true
	NonStrict Mode = false
)

// Snapshot is a read-only view of workflow state, safe to pass across
// goroutines: the engine builds one under its state lock before handing
// it to the resolver.
type Snapshot struct {
	Input map[string]any
	Data  map[string]any
	State map[string]any
}

// Error is returned for both syntax errors (malformed reference grammar)
// and, in strict mode, resolution failures (missing node/key/path).
type Error struct {
	Ref string
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolver: %s: %s", e.Ref, e.Msg)
}

type rootKind int

const (
	rootInput rootKind = iota
	rootNodes
	rootState
)

// Ref is a parsed reference expression.
type Ref struct {
	Raw  string
	Root rootKind
	// NodeID/Key name the $nodes.<id> or $state.<key> binding; unused
	// for $input.
	NodeID string
	Key    string
	Path   []string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsRef reports whether v is a string beginning with "$", i.e. something
// this package should attempt to parse as a reference rather than treat
// as a literal.
func IsRef(v any) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, "$")
}

// Parse validates and decomposes a reference string. A syntax error here
// is a compile-time concern for callers (the validator rejects malformed
// references before a run ever starts).
func Parse(s string) (*Ref, error) {
	if !strings.HasPrefix(s, "$") {
		return nil, &Error{Ref: s, Msg: "reference must begin with '$'"}
	}

	rest := s[1:]
	if rest == "" {
		return nil, &Error{Ref: s, Msg: "empty reference"}
	}

	segs := strings.Split(rest, ".")
	for _, seg := range segs {
		if !identRe.MatchString(seg) {
			return nil, &Error{Ref: s, Msg: fmt.Sprintf("invalid path segment %q", seg)}
		}
	}

	switch segs[0] {
	case "input":
		return &Ref{Raw: s, Root: rootInput, Path: segs[1:]}, nil
	case "nodes":
		if len(segs) < 2 {
			return nil, &Error{Ref: s, Msg: "$nodes reference requires a node id"}
		}

		return &Ref{Raw: s, Root: rootNodes, NodeID: segs[1], Path: segs[2:]}, nil
	case "state":
		if len(segs) < 2 {
			return nil, &Error{Ref: s, Msg: "$state reference requires a key"}
		}

		return &Ref{Raw: s, Root: rootState, Key: segs[1], Path: segs[2:]}, nil
	default:
		return nil, &Error{Ref: s, Msg: fmt.Sprintf("unknown reference root %q", segs[0])}
	}
}

// Resolve resolves v against snap. If v is not a $-prefixed string it is
// returned unchanged (it is a literal constant). If it is a reference,
// it is parsed and resolved under mode.
func Resolve(snap Snapshot, v any, mode Mode) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$") {
		return v, nil
	}

	ref, err := Parse(s)
	if err != nil {
		return nil, err
	}

	return ResolveRef(snap, ref, mode)
}

// ResolveRef resolves an already-parsed reference. Exposed separately so
// the condition evaluator, which substitutes references before parsing
// its expression grammar, can resolve them once up front.
func ResolveRef(snap Snapshot, ref *Ref, mode Mode) (any, error) {
	switch ref.Root {
	case rootInput:
		return traverse(snap.Input, ref.Path, mode, ref.Raw)
	case rootNodes:
		val, ok := snap.Data[ref.NodeID]
		if !ok {
			if mode == Strict {
				return nil, &Error{Ref: ref.Raw, Msg: fmt.Sprintf("node %q has not produced data", ref.NodeID)}
			}

			return nil, nil
		}

		return traverse(val, ref.Path, mode, ref.Raw)
	case rootState:
		val, ok := snap.State[ref.Key]
		if !ok {
			if mode == Strict {
				return nil, &Error{Ref: ref.Raw, Msg: fmt.Sprintf("state key %q is not set", ref.Key)}
			}

			return nil, nil
		}

		return traverse(val, ref.Path, mode, ref.Raw)
	default:
		return nil, &Error{Ref: ref.Raw, Msg: "unreachable reference root"}
	}
}

func traverse(v any, path []string, mode Mode, raw string) (any, error) {
	cur := v

	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			if mode == Strict {
				return nil, &Error{Ref: raw, Msg: fmt.Sprintf("cannot traverse %q into a non-object value", seg)}
			}

			return nil, nil
		}

		val, exists := m[seg]
		if !exists {
			if mode == Strict {
				return nil, &Error{Ref: raw, Msg: fmt.Sprintf("missing key %q", seg)}
			}

			return nil, nil
		}

		cur = val
	}

	return cur, nil
}
