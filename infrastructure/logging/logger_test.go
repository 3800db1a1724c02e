package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	l := New("engine", "not-a-level", "json")
	assert.Equal(t, "info", l.Logger.GetLevel().String())
}

func TestLogRunStartEmitsJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("engine", "debug", "json")
	l.SetOutput(&buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithWorkflow(ctx, "autoclave_v1")
	l.LogRunStart(ctx, "autoclave_v1", "autoclave_v1", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "autoclave_v1", entry["workflow"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "run starting", entry["message"])
}

func TestTraceIDRoundTripsThroughContext(t *testing.T) {
	ctx := WithTraceID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestWorkflowAndSpecificationRoundTripThroughContext(t *testing.T) {
	ctx := WithWorkflow(context.Background(), "wf-1")
	ctx = WithSpecification(ctx, "spec-1")
	assert.Equal(t, "wf-1", GetWorkflow(ctx))
	assert.Equal(t, "spec-1", GetSpecification(ctx))
}

func TestNewTraceIDProducesUniqueValues(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
