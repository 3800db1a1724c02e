package workflow

import (
	"context"
	"fmt"
	"sort"

	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"github.com/curetrace/engine/infrastructure/logging"
)

// KnownLayers is the set of layer type names the builder accepts. Populated
// at startup by whatever registers component factories for those layers.
var KnownLayers = map[string]bool{
	"data_source":   true,
	"data_binding":  true,
	"data_analysis": true,
	"result_merge":  true,
	"result_output": true,
}

// Builder constructs an ExecutionPlan from a raw workflow Definition:
// extracting tasks, resolving dependencies into a topological order, and
// validating the result.
type Builder struct {
	logger *logging.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(logger *logging.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build produces a validated ExecutionPlan from def.
func (b *Builder) Build(def Definition) (*ExecutionPlan, error) {
	tasks := extractTasks(def)

	order, err := resolveDependencies(tasks)
	if err != nil {
		return nil, err
	}

	if err := validate(tasks, order); err != nil {
		return nil, err
	}

	layers := map[string]bool{}
	for _, t := range tasks {
		layers[t.Layer] = true
	}
	layerNames := make([]string, 0, len(layers))
	for l := range layers {
		layerNames = append(layerNames, l)
	}
	sort.Strings(layerNames)

	plan := &ExecutionPlan{
		WorkflowName:   def.Name,
		Tasks:          tasks,
		ExecutionOrder: order,
		Parameters:     def.Parameters,
		Metadata: map[string]interface{}{
			"total_tasks": len(tasks),
			"layers":      layerNames,
		},
	}
	if b.logger != nil {
		b.logger.Info(context.Background(), "workflow built", map[string]interface{}{
			"workflow": def.Name,
			"tasks":    len(tasks),
		})
	}
	return plan, nil
}

func extractTasks(def Definition) []TaskDefinition {
	var tasks []TaskDefinition
	for _, layer := range def.Layers {
		for _, t := range layer.Tasks {
			t.Layer = layer.Layer
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// resolveDependencies returns a stable topological order over tasks (DFS,
// ties broken by declaration order), or a WorkflowError on a cycle.
func resolveDependencies(tasks []TaskDefinition) ([]string, error) {
	byID := make(map[string]TaskDefinition, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	visited := map[string]bool{}
	visiting := map[string]bool{}
	var order []string

	var visit func(id string) error
	visit = func(id string) error {
		if visiting[id] {
			return engineerrors.WorkflowError(fmt.Sprintf("cycle detected at task %q", id), nil)
		}
		if visited[id] {
			return nil
		}
		visiting[id] = true
		if t, ok := byID[id]; ok {
			for _, dep := range t.DependsOn {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		visiting[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, t := range tasks {
		if !visited[t.ID] {
			if err := visit(t.ID); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func validate(tasks []TaskDefinition, order []string) error {
	seen := map[string]bool{}
	for _, t := range tasks {
		if seen[t.ID] {
			return engineerrors.WorkflowError(fmt.Sprintf("duplicate task id %q", t.ID), nil)
		}
		seen[t.ID] = true
	}

	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			if !seen[dep] {
				return engineerrors.WorkflowError(fmt.Sprintf("task %q depends on unknown task %q", t.ID, dep), nil)
			}
		}
		if !KnownLayers[t.Layer] {
			return engineerrors.WorkflowError(fmt.Sprintf("unknown layer type %q for task %q", t.Layer, t.ID), nil)
		}
	}

	if len(order) != len(tasks) {
		return engineerrors.WorkflowError("execution order does not match task count", nil)
	}
	return nil
}
