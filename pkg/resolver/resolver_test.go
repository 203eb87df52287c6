package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot() Snapshot {
	return Snapshot{
		Input: map[string]any{"x": float64(10), "nested": map[string]any{"y": float64(2)}},
		Data:  map[string]any{"sum": map[string]any{"value": float64(30)}},
		State: map[string]any{"counter": float64(1)},
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "input root", ref: "$input", wantErr: false},
		{name: "input path", ref: "$input.x", wantErr: false},
		{name: "nodes requires id", ref: "$nodes", wantErr: true},
		{name: "nodes with id", ref: "$nodes.sum.value", wantErr: false},
		{name: "state requires key", ref: "$state", wantErr: true},
		{name: "unknown root", ref: "$bogus", wantErr: true},
		{name: "empty", ref: "$", wantErr: true},
		{name: "not a reference", ref: "input.x", wantErr: true},
		{name: "invalid segment", ref: "$input.", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.ref)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolve_Literal(t *testing.T) {
	v, err := Resolve(snapshot(), "plain string", Strict)
	require.NoError(t, err)
	assert.Equal(t, "plain string", v)

	v, err = Resolve(snapshot(), float64(42), Strict)
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)
}

func TestResolve_InputPath(t *testing.T) {
	v, err := Resolve(snapshot(), "$input.nested.y", Strict)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
}

func TestResolve_NodeReference(t *testing.T) {
	v, err := Resolve(snapshot(), "$nodes.sum.value", Strict)
	require.NoError(t, err)
	assert.Equal(t, float64(30), v)
}

func TestResolve_StateReference(t *testing.T) {
	v, err := Resolve(snapshot(), "$state.counter", Strict)
	require.NoError(t, err)
	assert.Equal(t, float64(1), v)
}

func TestResolve_StrictMissingNodeIsError(t *testing.T) {
	_, err := Resolve(snapshot(), "$nodes.missing.value", Strict)
	assert.Error(t, err)
}

func TestResolve_NonStrictMissingNodeIsNil(t *testing.T) {
	v, err := Resolve(snapshot(), "$nodes.missing.value", NonStrict)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestResolve_StrictTraverseIntoScalarIsError(t *testing.T) {
	_, err := Resolve(snapshot(), "$input.x.y", Strict)
	assert.Error(t, err)
}

func TestResolve_NonStrictTraverseIntoScalarIsNil(t *testing.T) {
	v, err := Resolve(snapshot(), "$input.x.y", NonStrict)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestResolve_DictOnlyTraversal_NoArrayIndexing(t *testing.T) {
	snap := Snapshot{Input: map[string]any{"items": []any{"a", "b"}}}

	_, err := Resolve(snap, "$input.items.0", Strict)
	assert.Error(t, err, "list values must not be traversable by a numeric path segment")
}
