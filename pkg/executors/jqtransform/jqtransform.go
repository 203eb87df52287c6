// Package jqtransform implements the "jq_transform" node kind: its
// static config carries a jq program (config["code"]) compiled with
// github.com/itchyny/gojq and run against the node's resolved input.
package jqtransform

import (
	"context"
	"fmt"

	"github.com/itchyny/gojq"
)

// Executor implements protocol.Executor for the "jq_transform" kind.
type Executor struct{}

func New() *Executor { return &Executor{} }

func (*Executor) Execute(ctx context.Context, input map[string]any, cfg map[string]any) (any, error) {
	code, _ := cfg["code"].(string)
	if code == "" {
		return nil, fmt.Errorf("jqtransform: missing required config field %q", "code")
	}

	query, err := gojq.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("jqtransform: parsing program: %w", err)
	}

	iter := query.RunWithContext(ctx, input)

	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("jqtransform: program produced no output")
	}

	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("jqtransform: %w", err)
	}

	return v, nil
}
