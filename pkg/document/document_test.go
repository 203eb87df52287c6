package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
id: wf1
version: 1
nodes:
  - id: sum
    kind: noop
edges:
  - from: start
    to: sum
  - from: sum
    to: end
output:
  input_mapping:
    total: $nodes.sum
`

func TestDecode_YAMLValid(t *testing.T) {
	wf, err := Decode([]byte(validYAML), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "wf1", wf.ID)
	assert.Equal(t, 1, wf.Version)
	require.Len(t, wf.Nodes, 1)
	assert.Equal(t, "sum", wf.Nodes[0].ID)
}

func TestDecode_UnknownTopLevelKeyRejected(t *testing.T) {
	doc := []byte("id: wf1\nversion: 1\nbogus: true\n")

	_, err := Decode(doc, FormatYAML)
	assert.Error(t, err)
}

func TestDecode_MissingRequiredFieldRejected(t *testing.T) {
	doc := []byte("version: 1\nnodes: []\nedges: []\n")

	_, err := Decode(doc, FormatYAML)
	assert.Error(t, err)
}

func TestDecode_JSONValid(t *testing.T) {
	doc := []byte(`{
		"id": "wf1", "version": 1,
		"nodes": [{"id": "sum", "kind": "noop"}],
		"edges": [{"from": "start", "to": "sum"}, {"from": "sum", "to": "end"}],
		"output": {"input_mapping": {"total": "$nodes.sum"}}
	}`)

	wf, err := Decode(doc, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "wf1", wf.ID)
}

func TestDecode_JSONUnknownTopLevelKeyRejected(t *testing.T) {
	doc := []byte(`{"id": "wf1", "version": 1, "bogus": true}`)

	_, err := Decode(doc, FormatJSON)
	assert.Error(t, err)
}
