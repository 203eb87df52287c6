package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/wf-runtime/pkg/resolver"
)

func TestResolveInputMapping(t *testing.T) {
	snap := resolver.Snapshot{Input: map[string]any{"x": float64(10), "y": float64(20)}}

	m := map[string]any{"a": "$input.x", "b": "$input.y", "c": "literal"}

	out, err := ResolveInputMapping(snap, m, resolver.Strict)
	require.NoError(t, err)
	assert.Equal(t, float64(10), out["a"])
	assert.Equal(t, float64(20), out["b"])
	assert.Equal(t, "literal", out["c"])
}

func TestResolveInputMapping_StrictErrorPropagates(t *testing.T) {
	snap := resolver.Snapshot{Input: map[string]any{}}

	_, err := ResolveInputMapping(snap, map[string]any{"a": "$input.missing"}, resolver.Strict)
	assert.Error(t, err)
}

func TestApplyOutputMapping_EmptyPassesThroughRaw(t *testing.T) {
	raw := map[string]any{"value": float64(5)}

	out, err := ApplyOutputMapping(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestApplyOutputMapping_RawResultSentinels(t *testing.T) {
	raw := "anything"

	for _, sentinel := range []string{"$result", "$tool_result", "$jq_result", "$code_result"} {
		out, err := ApplyOutputMapping(map[string]any{"v": sentinel}, raw)
		require.NoError(t, err)
		assert.Equal(t, raw, out.(map[string]any)["v"])
	}
}

func TestApplyOutputMapping_FieldSelector(t *testing.T) {
	raw := map[string]any{"a": map[string]any{"b": float64(7)}}

	out, err := ApplyOutputMapping(map[string]any{"v": "$.a.b"}, raw)
	require.NoError(t, err)
	assert.Equal(t, float64(7), out.(map[string]any)["v"])
}

func TestApplyOutputMapping_FieldSelectorMissingIsNilNotError(t *testing.T) {
	raw := map[string]any{"a": float64(1)}

	out, err := ApplyOutputMapping(map[string]any{"v": "$.a.nope"}, raw)
	require.NoError(t, err)
	assert.Nil(t, out.(map[string]any)["v"])
}

func TestApplyOutputMapping_MalformedSelectorIsError(t *testing.T) {
	_, err := ApplyOutputMapping(map[string]any{"v": "$."}, map[string]any{})
	assert.Error(t, err)
}

func TestApplyOutputMapping_NonMatchingDollarStringIsLiteral(t *testing.T) {
	out, err := ApplyOutputMapping(map[string]any{"v": "$notareference"}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "$notareference", out.(map[string]any)["v"])
}

func TestApplyOutputMapping_LiteralConstant(t *testing.T) {
	out, err := ApplyOutputMapping(map[string]any{"v": float64(99)}, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, float64(99), out.(map[string]any)["v"])
}
