package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planWithTwoTasks() *ExecutionPlan {
	return &ExecutionPlan{
		WorkflowName: "w",
		Tasks: []TaskDefinition{
			{ID: "a", Layer: "data_binding", Implementation: "noop"},
			{ID: "b", Layer: "data_analysis", Implementation: "noop", DependsOn: []string{"a"}},
		},
		ExecutionOrder: []string{"a", "b"},
	}
}

func TestOrchestratorExecutesInOrderAndRecordsFlow(t *testing.T) {
	factory := NewComponentFactory()
	var seen []string
	factory.Register("data_binding", "noop", ComponentFunc(func(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error {
		seen = append(seen, task.ID)
		wc.SetResult(task.ID, "ok")
		return nil
	}))
	factory.Register("data_analysis", "noop", ComponentFunc(func(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error {
		seen = append(seen, task.ID)
		wc.SetResult(task.ID, "ok")
		return nil
	}))

	recorder := NewFlowRecorder()
	orch := NewOrchestrator(factory, nil).WithFlowRecorder(recorder)
	wc := NewContext("run-1")
	result := orch.Execute(context.Background(), planWithTwoTasks(), wc)

	require.True(t, result.Success)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, 1.0, result.SuccessRate)
	assert.Equal(t, 2, recorder.Statistics().TaskCount)
}

func TestOrchestratorStopsAtFirstFailure(t *testing.T) {
	factory := NewComponentFactory()
	factory.Register("data_binding", "noop", ComponentFunc(func(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error {
		return errors.New("boom")
	}))
	ran := false
	factory.Register("data_analysis", "noop", ComponentFunc(func(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error {
		ran = true
		return nil
	}))

	orch := NewOrchestrator(factory, nil)
	result := orch.Execute(context.Background(), planWithTwoTasks(), NewContext("run-2"))

	assert.False(t, result.Success)
	assert.Equal(t, "failed", result.Status)
	assert.False(t, ran)
}

func TestOrchestratorRespectsCancellation(t *testing.T) {
	factory := NewComponentFactory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := NewOrchestrator(factory, nil)
	result := orch.Execute(ctx, planWithTwoTasks(), NewContext("run-3"))
	assert.False(t, result.Success)
	assert.Equal(t, "cancelled", result.Status)
}

func TestOrchestratorMissingComponentFails(t *testing.T) {
	factory := NewComponentFactory()
	orch := NewOrchestrator(factory, nil)
	result := orch.Execute(context.Background(), planWithTwoTasks(), NewContext("run-4"))
	assert.False(t, result.Success)
}
