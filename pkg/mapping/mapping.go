// Package mapping implements the two mapping directions a node uses:
// resolving its input_mapping into a concrete argument map before
// dispatch, and applying its output_mapping to the executor's raw
// result before publishing it to workflow state.
package mapping

import (
	"fmt"
	"strings"

	"github.com/dukex/wf-runtime/pkg/resolver"
)

// ResolveInputMapping resolves every value in m against snap under mode,
// returning the concrete argument map an executor receives.
func ResolveInputMapping(snap resolver.Snapshot, m map[string]any, mode resolver.Mode) (map[string]any, error) {
	out := make(map[string]any, len(m))

	for k, v := range m {
		rv, err := resolver.Resolve(snap, v, mode)
		if err != nil {
			return nil, fmt.Errorf("mapping: resolving input %q: %w", k, err)
		}

		out[k] = rv
	}

	return out, nil
}

const (
	sentinelResult     = "$result"
	sentinelToolResult = "$tool_result"
	sentinelJQResult   = "$jq_result"
	sentinelCodeResult = "$code_result"
)

func isRawResultSentinel(s string) bool {
	switch s {
	case sentinelResult, sentinelToolResult, sentinelJQResult, sentinelCodeResult:
		return true
	default:
		return false
	}
}

// ApplyOutputMapping shapes an executor's raw result according to m. An
// empty mapping passes the raw result through unchanged. Mapping values
// are one of: a raw-result sentinel, a "$.field.path" selector into the
// raw result, or a literal constant (any other JSON value, including a
// string that happens to start with "$" but matches neither form).
func ApplyOutputMapping(m map[string]any, raw any) (any, error) {
	if len(m) == 0 {
		return raw, nil
	}

	out := make(map[string]any, len(m))

	for k, v := range m {
		s, isStr := v.(string)

		switch {
		case isStr && isRawResultSentinel(s):
			out[k] = raw
		case isStr && strings.HasPrefix(s, "$."):
			val, err := fieldSelect(raw, s)
			if err != nil {
				return nil, fmt.Errorf("mapping: output key %q: %w", k, err)
			}

			out[k] = val
		default:
			out[k] = v
		}
	}

	return out, nil
}

func fieldSelect(raw any, spec string) (any, error) {
	rest := spec[len("$."):]
	if rest == "" {
		return nil, fmt.Errorf("mapping: empty field selector %q", spec)
	}

	segs := strings.Split(rest, ".")

	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("mapping: empty path segment in field selector %q", spec)
		}
	}

	cur := raw

	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, nil
		}

		v, exists := m[seg]
		if !exists {
			return nil, nil
		}

		cur = v
	}

	return cur, nil
}
