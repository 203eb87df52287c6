package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRun_AttachesRunAndWorkflowID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)

	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	WithRun("run-1", "wf-1").Info("run started")

	out := buf.String()
	assert.Contains(t, out, "module=engine")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "workflow_id=wf-1")
}
