package main

import (
	"github.com/dukex/wf-runtime/pkg/executors/httprequest"
	"github.com/dukex/wf-runtime/pkg/executors/jqtransform"
	"github.com/dukex/wf-runtime/pkg/executors/noop"
	"github.com/dukex/wf-runtime/pkg/registry"
	"github.com/dukex/wf-runtime/pkg/wfmodel"
)

// NewExecutorRegistry binds the kinds this module ships a production
// executor for. python_code, llm, and tool are intentionally absent: a
// document that declares one of those kinds fails validation unless
// an embedder registers its own executor first.
func NewExecutorRegistry() *registry.Registry {
	reg := registry.New()

	reg.Register(wfmodel.KindNoop, noop.New())
	reg.Register(wfmodel.KindHTTPRequest, httprequest.New())
	reg.Register(wfmodel.KindJQTransform, jqtransform.New())

	return reg
}
