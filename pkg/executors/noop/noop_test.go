package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_PassesInputThroughUnchanged(t *testing.T) {
	in := map[string]any{"a": float64(1), "b": "two"}

	out, err := New().Execute(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
