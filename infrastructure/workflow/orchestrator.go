package workflow

import (
	"context"
	"fmt"
	"time"

	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"github.com/curetrace/engine/infrastructure/logging"
)

// Orchestrator executes an ExecutionPlan strictly sequentially in
// topological order, checking for cancellation between tasks. It never
// branches on a task's result value; flow is purely linear.
type Orchestrator struct {
	factory  *ComponentFactory
	logger   *logging.Logger
	recorder *FlowRecorder
}

// NewOrchestrator constructs an Orchestrator bound to the given component
// factory.
func NewOrchestrator(factory *ComponentFactory, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{factory: factory, logger: logger}
}

// WithFlowRecorder attaches an optional FlowRecorder observer. It never
// affects execution; a nil recorder (the default) simply skips recording.
func (o *Orchestrator) WithFlowRecorder(recorder *FlowRecorder) *Orchestrator {
	o.recorder = recorder
	return o
}

// Execute runs every task in plan.ExecutionOrder against wc, stopping at the
// first failure or cancellation.
func (o *Orchestrator) Execute(ctx context.Context, plan *ExecutionPlan, wc *WorkflowContext) WorkflowResult {
	start := time.Now()
	wc.ExecutionPlan = plan
	wc.IsInitialized = true

	var taskResults []TaskResult

	for _, taskID := range plan.ExecutionOrder {
		select {
		case <-ctx.Done():
			return o.finish(start, taskResults, false, "cancelled", engineerrors.Cancelled(plan.WorkflowName).Error())
		default:
		}

		task, ok := plan.TaskByID(taskID)
		if !ok {
			err := engineerrors.WorkflowError(fmt.Sprintf("task definition not found: %s", taskID), nil)
			taskResults = append(taskResults, TaskResult{TaskID: taskID, Success: false, Error: err.Error()})
			return o.finish(start, taskResults, false, "failed", err.Error())
		}

		taskStart := time.Now()
		result := o.executeTask(ctx, task, wc)
		result.ExecutionTime = time.Since(taskStart)
		taskResults = append(taskResults, result)

		if o.logger != nil {
			var logErr error
			if !result.Success {
				logErr = fmt.Errorf("%s", result.Error)
			}
			o.logger.LogTaskExecution(ctx, task.ID, task.Implementation, result.ExecutionTime, logErr)
		}

		wc.LastUpdated = time.Now()

		if result.Success && o.recorder != nil {
			o.recorder.Record(task.ID, task.ID)
		}

		if !result.Success {
			return o.finish(start, taskResults, false, "failed", result.Error)
		}
	}

	return o.finish(start, taskResults, true, "completed", "")
}

func (o *Orchestrator) executeTask(ctx context.Context, task TaskDefinition, wc *WorkflowContext) TaskResult {
	component, err := o.factory.Resolve(task.Layer, task.Implementation)
	if err != nil {
		return TaskResult{TaskID: task.ID, Success: false, Error: err.Error()}
	}

	if err := component.Execute(ctx, task, wc); err != nil {
		return TaskResult{TaskID: task.ID, Success: false, Error: err.Error(), Metadata: map[string]interface{}{
			"layer": task.Layer, "implementation": task.Implementation, "depends_on": task.DependsOn,
		}}
	}
	return TaskResult{TaskID: task.ID, Success: true, Metadata: map[string]interface{}{
		"layer": task.Layer, "implementation": task.Implementation, "depends_on": task.DependsOn,
	}}
}

func (o *Orchestrator) finish(start time.Time, taskResults []TaskResult, success bool, status, errMsg string) WorkflowResult {
	elapsed := time.Since(start)
	successCount := 0
	for _, r := range taskResults {
		if r.Success {
			successCount++
		}
	}
	rate := 1.0
	if len(taskResults) > 0 {
		rate = float64(successCount) / float64(len(taskResults))
	}
	return WorkflowResult{
		Success:       success,
		ExecutionTime: elapsed,
		Error:         errMsg,
		TaskResults:   taskResults,
		Status:        status,
		TotalResults:  len(taskResults),
		SuccessRate:   rate,
		ErrorCount:    len(taskResults) - successCount,
	}
}
