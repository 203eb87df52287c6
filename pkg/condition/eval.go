package condition

import (
	"fmt"
	"reflect"

	"github.com/dukex/wf-runtime/pkg/resolver"
)

// Eval evaluates a compiled program against snap. References are
// resolved non-strictly (a missing $nodes/$state/$input path yields nil
// rather than failing the run) - only the final boolean/arithmetic
// evaluation can produce a ConditionError, and callers treat any such
// error as the case being unsatisfied ("false"), never as fatal.
func Eval(prog *Program, snap resolver.Snapshot) (bool, error) {
	if prog.AlwaysTrue {
		return true, nil
	}

	env := make([]any, len(prog.Refs))

	for i, raw := range prog.Refs {
		ref, err := resolver.Parse(raw)
		if err != nil {
			return false, fmt.Errorf("condition: %w", err)
		}

		v, err := resolver.ResolveRef(snap, ref, resolver.NonStrict)
		if err != nil {
			return false, fmt.Errorf("condition: %w", err)
		}

		env[i] = v
	}

	v, err := evalNode(prog.ast, env)
	if err != nil {
		return false, err
	}

	return truthy(v), nil
}

func evalNode(n node, env []any) (any, error) {
	switch t := n.(type) {
	case *litNode:
		return t.val, nil
	case *refNode:
		if t.index < 0 || t.index >= len(env) {
			return nil, fmt.Errorf("condition: reference index out of range")
		}

		return env[t.index], nil
	case *unaryNode:
		x, err := evalNode(t.x, env)
		if err != nil {
			return nil, err
		}

		return !truthy(x), nil
	case *boolNode:
		switch t.op {
		case "and":
			for _, x := range t.xs {
				v, err := evalNode(x, env)
				if err != nil {
					return nil, err
				}

				if !truthy(v) {
					return false, nil
				}
			}

			return true, nil
		case "or":
			for _, x := range t.xs {
				v, err := evalNode(x, env)
				if err != nil {
					return nil, err
				}

				if truthy(v) {
					return true, nil
				}
			}

			return false, nil
		default:
			return nil, fmt.Errorf("condition: unknown bool op %q", t.op)
		}
	case *binNode:
		return evalBin(t, env)
	case *compareNode:
		return evalCompare(t, env)
	default:
		return nil, fmt.Errorf("condition: unhandled node type %T", n)
	}
}

func evalBin(t *binNode, env []any) (any, error) {
	l, err := evalNode(t.l, env)
	if err != nil {
		return nil, err
	}

	r, err := evalNode(t.r, env)
	if err != nil {
		return nil, err
	}

	lf, ok1 := asFloat(l)
	rf, ok2 := asFloat(r)

	if !ok1 || !ok2 {
		return nil, fmt.Errorf("condition: arithmetic operator %q requires numeric operands", t.op)
	}

	switch t.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("condition: division by zero")
		}

		return lf / rf, nil
	default:
		return nil, fmt.Errorf("condition: unknown arithmetic op %q", t.op)
	}
}

func evalCompare(t *compareNode, env []any) (any, error) {
	left, err := evalNode(t.first, env)
	if err != nil {
		return nil, err
	}

	for i, op := range t.ops {
		right, err := evalNode(t.rest[i], env)
		if err != nil {
			return nil, err
		}

		ok, err := compareOne(op, left, right)
		if err != nil {
			return nil, err
		}

		if !ok {
			return false, nil
		}

		left = right
	}

	return true, nil
}

func compareOne(op string, l, r any) (bool, error) {
	if op == "==" || op == "!=" {
		eq := equal(l, r)
		if op == "==" {
			return eq, nil
		}

		return !eq, nil
	}

	lf, ok1 := asFloat(l)
	rf, ok2 := asFloat(r)

	if ok1 && ok2 {
		return numericCompare(op, lf, rf), nil
	}

	ls, ok1 := l.(string)
	rs, ok2 := r.(string)

	if ok1 && ok2 {
		return stringCompare(op, ls, rs), nil
	}

	return false, fmt.Errorf("condition: cannot compare %T with %T using %q", l, r, op)
}

func numericCompare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

func stringCompare(op string, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

// equal never panics: map and slice operands (valid results of resolving
// a $nodes/$state reference to a JSON object or array) have an
// uncomparable dynamic type, so a bare l == r is not safe here.
func equal(l, r any) bool {
	lf, ok1 := asFloat(l)
	rf, ok2 := asFloat(r)

	if ok1 && ok2 {
		return lf == rf
	}

	return reflect.DeepEqual(l, r)
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
