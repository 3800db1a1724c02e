package runner

import (
	"context"
	"fmt"

	"github.com/curetrace/engine/domain/calc"
	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/report"
	"github.com/curetrace/engine/domain/rule"
	"github.com/curetrace/engine/domain/specmodel"
	"github.com/curetrace/engine/domain/stage"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"github.com/curetrace/engine/infrastructure/workflow"
)

// Task ids for the fixed four-stage pipeline every run builds. These are
// the DAG's nodes, not the curing stages the stage detector produces.
const (
	taskBind    = "bind_calculations"
	taskDetect  = "detect_stages"
	taskEval    = "evaluate_rules"
	taskFormat  = "format_result"
	layerBind   = "data_binding"
	layerAnalyz = "data_analysis"
	layerOutput = "result_output"
)

// buildDefinition describes the fixed workflow every run executes: bind
// calculations, detect stages, evaluate rules, format the result. Each
// analytics run is the same shape; only the bound specification and raw
// data differ, which is why the plan is cacheable by spec identity alone.
func buildDefinition(workflowName string, bound specmodel.BoundSpecification) workflow.Definition {
	return workflow.Definition{
		Name: workflowName,
		Layers: []workflow.LayerDefinition{
			{Layer: layerBind, Tasks: []workflow.TaskDefinition{
				{ID: taskBind, Layer: layerBind, Implementation: "calc_engine"},
			}},
			{Layer: layerAnalyz, Tasks: []workflow.TaskDefinition{
				{ID: taskDetect, Layer: layerAnalyz, Implementation: "stage_detector", DependsOn: []string{taskBind}},
				{ID: taskEval, Layer: layerAnalyz, Implementation: "rule_evaluator", DependsOn: []string{taskDetect}},
			}},
			{Layer: layerOutput, Tasks: []workflow.TaskDefinition{
				{ID: taskFormat, Layer: layerOutput, Implementation: "standard_format", DependsOn: []string{taskEval}},
			}},
		},
		Parameters: map[string]interface{}{"specification_id": bound.ID},
	}
}

// buildFactory registers one-shot components closing over this run's bound
// specification and sampling interval. A factory is built fresh per run
// because each component's behavior is parameterized by the request, not
// shared process-wide state; the plan cache (keyed by specification
// identity) is what actually saves repeated work across runs, not factory
// reuse.
func buildFactory(evaluator *expr.Evaluator, bound specmodel.BoundSpecification, raw *specmodel.RawData, grouping specmodel.SensorGrouping, samplingInterval float64, requestTime string) *workflow.ComponentFactory {
	factory := workflow.NewComponentFactory()

	factory.Register(layerBind, "calc_engine", workflow.ComponentFunc(func(ctx context.Context, task workflow.TaskDefinition, wc *workflow.WorkflowContext) error {
		engine := calc.NewEngine(evaluator)
		env, err := engine.Calculate(raw, grouping, bound.Calculations)
		if err != nil {
			return err
		}
		wc.SetResult(task.ID, env)
		return nil
	}))

	factory.Register(layerAnalyz, "stage_detector", workflow.ComponentFunc(func(ctx context.Context, task workflow.TaskDefinition, wc *workflow.WorkflowContext) error {
		env, err := requireEnvironment(wc, taskBind)
		if err != nil {
			return err
		}
		detector := stage.NewDetector(evaluator, samplingInterval)
		timeline, warnings, err := detector.Detect(raw, env, bound.Stages)
		if err != nil {
			return err
		}
		wc.StageTimeline = timeline
		wc.SetResult(task.ID, warnings)
		return nil
	}))

	factory.Register(layerAnalyz, "rule_evaluator", workflow.ComponentFunc(func(ctx context.Context, task workflow.TaskDefinition, wc *workflow.WorkflowContext) error {
		env, err := requireEnvironment(wc, taskBind)
		if err != nil {
			return err
		}
		ruleEvaluator := rule.NewEvaluator(evaluator)
		results := ruleEvaluator.EvaluateAll(bound, env, wc.StageTimeline)
		wc.SetResult(task.ID, results)
		return nil
	}))

	factory.Register(layerOutput, "standard_format", workflow.ComponentFunc(func(ctx context.Context, task workflow.TaskDefinition, wc *workflow.WorkflowContext) error {
		raw, ok := wc.Result(taskEval)
		if !ok {
			return engineerrors.WorkflowError(fmt.Sprintf("task %q has no upstream result from %q", task.ID, taskEval), nil)
		}
		results, ok := raw.([]specmodel.RuleResult)
		if !ok {
			return engineerrors.WorkflowError(fmt.Sprintf("task %q: upstream result has unexpected type", task.ID), nil)
		}
		doc := report.FormatStandard(results, bound.ID, requestTime, "")
		wc.FormattedResults = doc
		wc.SetResult(task.ID, doc)
		return nil
	}))

	return factory
}

func requireEnvironment(wc *workflow.WorkflowContext, taskID string) (expr.Environment, error) {
	raw, ok := wc.Result(taskID)
	if !ok {
		return nil, engineerrors.WorkflowError(fmt.Sprintf("no upstream result from %q", taskID), nil)
	}
	env, ok := raw.(expr.Environment)
	if !ok {
		return nil, engineerrors.WorkflowError(fmt.Sprintf("upstream result from %q has unexpected type", taskID), nil)
	}
	return env, nil
}
