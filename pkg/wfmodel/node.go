package wfmodel

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Node kinds known to the core. python_code, llm and tool are dispatched
// through the Executor registry like any other kind; the core ships no
// production implementation for them.
const (
	KindNoop        = "noop"
	KindPythonCode  = "python_code"
	KindJQTransform = "jq_transform"
	KindRouter      = "router"
	KindLLM         = "llm"
	KindHTTPRequest = "http_request"
	KindTool        = "tool"
)

// NodeSpec is a single node declaration. Common fields apply to every
// kind; Cases/Default apply only to router nodes; Config carries whatever
// static, kind-specific configuration the node's executor needs (e.g.
// jq_transform's "code", http_request's "url"/"method"/"headers").
type NodeSpec struct {
	ID            string         `yaml:"id"                       json:"id"                       validate:"required"`
	Kind          string         `yaml:"kind"                     json:"kind"                     validate:"required"`
	InputMapping  map[string]any `yaml:"input_mapping,omitempty"  json:"input_mapping,omitempty"`
	OutputMapping map[string]any `yaml:"output_mapping,omitempty" json:"output_mapping,omitempty"`
	TimeoutS      *float64       `yaml:"timeout_s,omitempty"       json:"timeout_s,omitempty"`

	Cases   CaseList `yaml:"cases,omitempty"   json:"cases,omitempty"`
	Default string   `yaml:"default,omitempty" json:"default,omitempty"`

	Config map[string]any `yaml:",inline" json:"-"`
}

// nodeSpecKnownFields lists the JSON keys UnmarshalJSON consumes
// explicitly; everything else lands in Config.
var nodeSpecKnownFields = map[string]bool{
	"id": true, "kind": true, "input_mapping": true, "output_mapping": true,
	"timeout_s": true, "cases": true, "default": true,
}

// UnmarshalJSON captures every key not part of the common/router shape
// into Config, mirroring what yaml.v3's `,inline` map tag does natively
// for YAML documents (encoding/json has no equivalent, so this does it
// by hand).
func (n *NodeSpec) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID            string         `json:"id"`
		Kind          string         `json:"kind"`
		InputMapping  map[string]any `json:"input_mapping,omitempty"`
		OutputMapping map[string]any `json:"output_mapping,omitempty"`
		TimeoutS      *float64       `json:"timeout_s,omitempty"`
		Cases         CaseList       `json:"cases,omitempty"`
		Default       string         `json:"default,omitempty"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("wfmodel: decoding node: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wfmodel: decoding node: %w", err)
	}

	config := make(map[string]any, len(raw))

	for k, v := range raw {
		if nodeSpecKnownFields[k] {
			continue
		}

		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("wfmodel: decoding node config key %q: %w", k, err)
		}

		config[k] = val
	}

	n.ID = a.ID
	n.Kind = a.Kind
	n.InputMapping = a.InputMapping
	n.OutputMapping = a.OutputMapping
	n.TimeoutS = a.TimeoutS
	n.Cases = a.Cases
	n.Default = a.Default
	n.Config = config

	return nil
}

// MarshalJSON flattens Config back alongside the common fields so the
// JSON round-trips to the same shape it was decoded from.
func (n NodeSpec) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Config)+7)

	for k, v := range n.Config {
		out[k] = v
	}

	out["id"] = n.ID
	out["kind"] = n.Kind

	if n.InputMapping != nil {
		out["input_mapping"] = n.InputMapping
	}

	if n.OutputMapping != nil {
		out["output_mapping"] = n.OutputMapping
	}

	if n.TimeoutS != nil {
		out["timeout_s"] = *n.TimeoutS
	}

	if len(n.Cases) > 0 {
		out["cases"] = n.Cases
	}

	if n.Default != "" {
		out["default"] = n.Default
	}

	return json.Marshal(out)
}

// CaseEntry is one router case: a label and the condition expression
// that selects it.
type CaseEntry struct {
	Label     string
	Condition string
}

// CaseList is an ordered label->condition mapping. Document authors
// write it as a normal YAML/JSON object; CaseList's custom
// marshal/unmarshal methods preserve the declaration order that
// "first matching case wins" routing semantics depend on, which a
// plain map[string]string cannot.
type CaseList []CaseEntry

func (c *CaseList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("wfmodel: cases must be a mapping, got kind %d", node.Kind)
	}

	out := make(CaseList, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var entry CaseEntry
		if err := node.Content[i].Decode(&entry.Label); err != nil {
			return fmt.Errorf("wfmodel: decoding case label: %w", err)
		}

		if err := node.Content[i+1].Decode(&entry.Condition); err != nil {
			return fmt.Errorf("wfmodel: decoding case condition for %q: %w", entry.Label, err)
		}

		out = append(out, entry)
	}

	*c = out

	return nil
}

func (c CaseList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, entry := range c {
		var key, val yaml.Node

		key.SetString(entry.Label)
		val.SetString(entry.Condition)
		node.Content = append(node.Content, &key, &val)
	}

	return node, nil
}

func (c *CaseList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("wfmodel: decoding cases: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("wfmodel: cases must be a JSON object")
	}

	var out CaseList

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("wfmodel: decoding case label: %w", err)
		}

		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("wfmodel: case label must be a string")
		}

		var condition string
		if err := dec.Decode(&condition); err != nil {
			return fmt.Errorf("wfmodel: decoding case condition for %q: %w", label, err)
		}

		out = append(out, CaseEntry{Label: label, Condition: condition})
	}

	*c = out

	return nil
}

func (c CaseList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, entry := range c {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(entry.Label)
		if err != nil {
			return nil, err
		}

		valBytes, err := json.Marshal(entry.Condition)
		if err != nil {
			return nil, err
		}

		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valBytes)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
