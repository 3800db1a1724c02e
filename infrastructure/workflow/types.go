// Package workflow implements the DAG orchestrator: plan construction from a
// layered workflow definition, the shared WorkflowContext, the component
// factory, sequential execution, and the plan cache.
package workflow

import (
	"sync"
	"time"

	"github.com/curetrace/engine/domain/specmodel"
)

// TaskDefinition is one task entry within a workflow layer.
type TaskDefinition struct {
	ID             string
	Layer          string
	Implementation string
	Algorithm      string
	DependsOn      []string
	Parameters     map[string]interface{}
}

// LayerDefinition is one layer of a workflow definition: a named group of
// tasks that share a layer type.
type LayerDefinition struct {
	Layer string
	Tasks []TaskDefinition
}

// Definition is the raw, unbuilt workflow: an ordered list of layers plus
// workflow-level parameters.
type Definition struct {
	Name       string
	Layers     []LayerDefinition
	Parameters map[string]interface{}
}

// ExecutionPlan is the built, validated, topologically ordered workflow.
type ExecutionPlan struct {
	WorkflowName   string
	Tasks          []TaskDefinition
	ExecutionOrder []string
	Parameters     map[string]interface{}
	Metadata       map[string]interface{}
}

// TaskByID returns the task definition with the given id, if present.
func (p *ExecutionPlan) TaskByID(id string) (TaskDefinition, bool) {
	for _, t := range p.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskDefinition{}, false
}

// WorkflowContext is the mutable, shared state threaded through every task
// in a run. Each task owns single-writer discipline over its own
// ProcessorResults entry; the well-known keys (SensorGrouping,
// StageTimeline, FormattedResults) are set by the specific task whose
// contract says it owns them.
type WorkflowContext struct {
	mu sync.Mutex

	ContextID string

	RawData          *specmodel.RawData
	SensorGrouping   specmodel.SensorGrouping
	StageTimeline    specmodel.StageTimeline
	ExecutionPlan    *ExecutionPlan
	ProcessorResults map[string]interface{}
	FormattedResults interface{}

	LastUpdated   time.Time
	IsInitialized bool
}

// NewContext constructs an empty WorkflowContext with the given context id.
func NewContext(contextID string) *WorkflowContext {
	return &WorkflowContext{
		ContextID:        contextID,
		ProcessorResults: map[string]interface{}{},
	}
}

// SetResult records a task's result under its id. Safe for the sequential
// orchestrator's single-writer-per-task discipline.
func (c *WorkflowContext) SetResult(taskID string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ProcessorResults[taskID] = value
	c.LastUpdated = time.Now()
}

// Result returns a previously recorded task result.
func (c *WorkflowContext) Result(taskID string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.ProcessorResults[taskID]
	return v, ok
}

// TaskResult is the outcome of executing one task.
type TaskResult struct {
	TaskID        string
	Success       bool
	Error         string
	ExecutionTime time.Duration
	Metadata      map[string]interface{}
}

// WorkflowResult is the outcome of executing an entire plan.
type WorkflowResult struct {
	Success       bool
	Result        interface{}
	ExecutionTime time.Duration
	Error         string
	TaskResults   []TaskResult
	Status        string // "completed", "failed", "cancelled"
	TotalResults  int
	SuccessRate   float64
	ErrorCount    int
}
