package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowRecorderFlagsSharedKeyViolation(t *testing.T) {
	r := NewFlowRecorder()
	r.Record("task_a", "shared_key")
	r.Record("task_b", "shared_key")

	stats := r.Statistics()
	assert.Equal(t, 2, stats.TaskCount)
	assert.Contains(t, stats.Violations, "shared_key")
	assert.ElementsMatch(t, []string{"task_a", "task_b"}, stats.Violations["shared_key"])
}

func TestFlowRecorderNoViolationForDisjointKeys(t *testing.T) {
	r := NewFlowRecorder()
	r.Record("task_a", "key_a")
	r.Record("task_b", "key_b")
	assert.Empty(t, r.Statistics().Violations)
}
