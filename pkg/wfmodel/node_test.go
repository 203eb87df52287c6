package wfmodel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCaseList_YAMLPreservesOrder(t *testing.T) {
	doc := []byte("c: third\na: first\nb: second\n")

	var cl CaseList
	require.NoError(t, yaml.Unmarshal(doc, &cl))

	require.Len(t, cl, 3)
	assert.Equal(t, "c", cl[0].Label)
	assert.Equal(t, "a", cl[1].Label)
	assert.Equal(t, "b", cl[2].Label)
}

func TestCaseList_JSONPreservesOrder(t *testing.T) {
	doc := []byte(`{"zeta": "cond_z", "alpha": "cond_a"}`)

	var cl CaseList
	require.NoError(t, json.Unmarshal(doc, &cl))

	require.Len(t, cl, 2)
	assert.Equal(t, "zeta", cl[0].Label)
	assert.Equal(t, "alpha", cl[1].Label)
}

func TestCaseList_JSONRoundTrip(t *testing.T) {
	cl := CaseList{{Label: "a", Condition: "$input.x > 1"}, {Label: "b", Condition: "else"}}

	data, err := json.Marshal(cl)
	require.NoError(t, err)

	var out CaseList
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, cl, out)
}

func TestNodeSpec_JSONConfigCapturesUnknownKeys(t *testing.T) {
	doc := []byte(`{"id":"n1","kind":"http_request","url":"https://example.com","method":"GET"}`)

	var n NodeSpec
	require.NoError(t, json.Unmarshal(doc, &n))

	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "http_request", n.Kind)
	assert.Equal(t, "https://example.com", n.Config["url"])
	assert.Equal(t, "GET", n.Config["method"])
}

func TestNodeSpec_JSONRoundTrip(t *testing.T) {
	n := NodeSpec{
		ID:     "n1",
		Kind:   "jq_transform",
		Config: map[string]any{"code": "."},
	}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var out NodeSpec
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, n.ID, out.ID)
	assert.Equal(t, n.Kind, out.Kind)
	assert.Equal(t, n.Config["code"], out.Config["code"])
}
