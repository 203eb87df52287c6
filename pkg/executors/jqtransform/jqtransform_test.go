package jqtransform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_RunsProgramAgainstInput(t *testing.T) {
	e := New()

	out, err := e.Execute(context.Background(), map[string]any{"a": float64(1), "b": float64(2)}, map[string]any{
		"code": ".a + .b",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(3), out)
}

func TestExecute_AlternativeWithMissingFieldYieldsPresentValue(t *testing.T) {
	e := New()

	out, err := e.Execute(context.Background(), map[string]any{"a": float64(1)}, map[string]any{
		"code": ".a // .b",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), out)
}

func TestExecute_MissingCodeIsError(t *testing.T) {
	e := New()

	_, err := e.Execute(context.Background(), map[string]any{}, map[string]any{})
	assert.Error(t, err)
}
