// Package runner is the library entrypoint: it wires the template and
// specification registries, the binder, the expression engine, the
// calculation engine, the stage detector, the rule evaluator, and the
// formatter into a runnable workflow, and exposes the conceptual response
// shape of spec.md §6.2 ({status, execution_time, result_path|preview,
// error?}) to any caller (cmd/curectl, applications/httpapi).
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/report"
	"github.com/curetrace/engine/domain/specmodel"
	"github.com/curetrace/engine/infrastructure/config"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"github.com/curetrace/engine/infrastructure/logging"
	"github.com/curetrace/engine/infrastructure/workflow"
)

// Request is a run request per spec.md §6.2's conceptual surface.
type Request struct {
	WorkflowID      string
	SpecificationID string
	SensorGrouping  specmodel.SensorGrouping
	ProcessID       string
	SeriesID        string
	CalculationDate string

	RawData          *specmodel.RawData
	SamplingInterval float64 // minutes per sample, for stage-detector features
}

// Response is the conceptual shape spec.md §6.2 describes.
type Response struct {
	Status        string
	ExecutionTime time.Duration
	ResultPath    string
	Preview       *report.Document
	Error         string

	err error // original error, retained for ExitCode's classification
}

// Runner owns the loaded registries and constructed engines for one
// process. It is safe to share across concurrent runs: every registry is
// read-only after Load, and each call to Run constructs its own evaluator
// and WorkflowContext.
type Runner struct {
	Templates      *config.TemplateRegistry
	Specifications *config.SpecificationRegistry
	Binder         *config.Binder
	Registry       *expr.Registry
	Builder        *workflow.Builder
	Cache          *workflow.Cache
	Logger         *logging.Logger
}

// New constructs a Runner from startup configuration, loading the template
// and specification registries eagerly.
func New(cfg config.StartupConfig, logger *logging.Logger) (*Runner, error) {
	templates := config.NewTemplateRegistry(cfg.TemplatesRoot)
	if err := templates.Load(); err != nil {
		return nil, err
	}
	specs := config.NewSpecificationRegistry(cfg.SpecificationsRoot)
	if err := specs.Load(); err != nil {
		return nil, err
	}

	return &Runner{
		Templates:      templates,
		Specifications: specs,
		Binder:         config.NewBinder(templates),
		Registry:       expr.NewRegistry(),
		Builder:        workflow.NewBuilder(logger),
		Cache:          workflow.NewCache(cfg.WorkflowCacheSize),
		Logger:         logger,
	}, nil
}

// Run executes one analytics run: load + bind the specification, run the
// calculation engine, the stage detector, the rule evaluator, then format
// the aggregated result.
func (r *Runner) Run(ctx context.Context, req Request) Response {
	start := time.Now()
	requestTime := start.UTC().Format(time.RFC3339)

	if r.Logger != nil {
		r.Logger.LogRunStart(ctx, req.WorkflowID, req.SpecificationID, 0)
	}

	spec, err := r.Specifications.LoadSpecification(req.SpecificationID)
	if err != nil {
		return r.fail(start, err)
	}

	bound, err := r.Binder.Bind(spec, req.SensorGrouping)
	if err != nil {
		return r.fail(start, err)
	}

	def := buildDefinition(req.WorkflowID, bound)
	planHash := workflow.HashDefinition(def)
	plan, cached := r.Cache.Get(def.Name, planHash)
	if !cached {
		plan, err = r.Builder.Build(def)
		if err != nil {
			return r.fail(start, err)
		}
		r.Cache.Put(def.Name, planHash, plan)
	}
	if r.Logger != nil {
		r.Logger.LogCacheEvent(ctx, def.Name, cached)
	}

	evaluator := expr.NewEvaluator(r.Registry, nil)
	factory := buildFactory(evaluator, bound, req.RawData, req.SensorGrouping, req.SamplingInterval, requestTime)
	orchestrator := workflow.NewOrchestrator(factory, r.Logger).WithFlowRecorder(workflow.NewFlowRecorder())

	wc := workflow.NewContext(req.WorkflowID)
	wfResult := orchestrator.Execute(ctx, plan, wc)
	if !wfResult.Success {
		return r.fail(start, engineerrors.WorkflowError(wfResult.Error, nil))
	}

	if r.Logger != nil {
		r.Logger.LogStageDetection(ctx, len(wc.StageTimeline), nil)
	}

	doc, ok := wc.FormattedResults.(report.Document)
	if !ok {
		return r.fail(start, engineerrors.Internal("formatted result missing or malformed", nil))
	}

	if r.Logger != nil {
		for _, entry := range doc.Results {
			for _, res := range entry.RuleCompliance.Rules {
				r.Logger.LogRuleEvaluation(ctx, res.RuleName, res.Passed, "")
			}
		}
	}

	elapsed := time.Since(start)
	if r.Logger != nil {
		r.Logger.LogRunEnd(ctx, true, elapsed, nil)
	}

	return Response{
		Status:        "completed",
		ExecutionTime: elapsed,
		ResultPath:    fmt.Sprintf("%s/%s", req.ProcessID, req.SeriesID),
		Preview:       &doc,
	}
}

func (r *Runner) fail(start time.Time, err error) Response {
	if r.Logger != nil {
		r.Logger.LogRunEnd(context.Background(), false, time.Since(start), err)
	}
	return Response{
		Status:        "failed",
		ExecutionTime: time.Since(start),
		Error:         err.Error(),
		err:           err,
	}
}

// ExitCode maps a run's terminal error (if any) to the process exit code
// convention of spec.md §6.4.
func ExitCode(resp Response) int {
	if resp.Status == "completed" {
		return 0
	}
	return engineerrors.ExitCode(resp.err)
}
