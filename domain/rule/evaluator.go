// Package rule implements the rule evaluator: for each rule in a bound
// specification, evaluate its condition against the appropriate stage slice
// of the environment and record a RuleResult.
package rule

import (
	"fmt"
	"strings"

	"github.com/curetrace/engine/domain/expr"
	"github.com/curetrace/engine/domain/specmodel"
)

// Evaluator evaluates a bound specification's rules against a calculated
// environment and a resolved stage timeline.
type Evaluator struct {
	expr *expr.Evaluator
}

// NewEvaluator constructs a rule Evaluator backed by the given expression
// evaluator.
func NewEvaluator(exprEvaluator *expr.Evaluator) *Evaluator {
	return &Evaluator{expr: exprEvaluator}
}

// EvaluateAll evaluates every rule in specification order. No rule depends on
// another's result.
func (e *Evaluator) EvaluateAll(bound specmodel.BoundSpecification, env expr.Environment, timeline specmodel.StageTimeline) []specmodel.RuleResult {
	stageOf := stageAssignments(bound.Stages)
	results := make([]specmodel.RuleResult, 0, len(bound.Rules))
	for _, r := range bound.Rules {
		results = append(results, e.evaluateOne(r, env, timeline, stageOf))
	}
	return results
}

func (e *Evaluator) evaluateOne(r specmodel.RuleDef, env expr.Environment, timeline specmodel.StageTimeline, stageOf map[string]string) (result specmodel.RuleResult) {
	stageID := resolveStage(r, stageOf)
	result.RuleID = r.ID
	result.Severity = r.Severity
	result.Stage = stageID

	defer func() {
		if rec := recover(); rec != nil {
			result.Passed = false
			result.Message = fmt.Sprintf("%v", rec)
		}
	}()

	filtered := filterEnvironment(env, stageID, timeline)

	if missing := missingCalculations(filtered, r.Calculations); len(missing) > 0 {
		result.Passed = false
		result.Message = fmt.Sprintf("missing calculations: %s", strings.Join(missing, ", "))
		return result
	}

	value, analysis, err := e.expr.Evaluate(r.Condition, filtered, stageID)
	if err != nil {
		result.Passed = false
		result.Message = err.Error()
		return result
	}

	passed := false
	if analysis.ComplianceResult != nil {
		passed = *analysis.ComplianceResult
	} else {
		passed = value.Truthy()
	}

	result.Passed = passed
	result.ActualValue = value.Native()
	result.Threshold = r.Parameters["threshold"]
	result.Message = fmt.Sprintf("%s = %v", r.Condition, passed)
	result.Analysis = specmodel.ResultAnalysis{
		IsNumeric:        analysis.IsNumeric,
		IsArray:          analysis.IsArray,
		IsBoolean:        analysis.IsBoolean,
		HasComparison:    analysis.HasComparison,
		ComplianceResult: analysis.ComplianceResult,
	}
	return result
}

// stageAssignments builds a rule-id -> stage-id map from each stage
// definition's declared rules list.
func stageAssignments(stages []specmodel.StageDef) map[string]string {
	out := make(map[string]string)
	for _, s := range stages {
		for _, ruleID := range s.Rules {
			out[ruleID] = s.ID
		}
	}
	return out
}

// resolveStage determines a rule's stage: its explicit field, else the stage
// that declares it in its rules list, else the global sentinel.
func resolveStage(r specmodel.RuleDef, stageOf map[string]string) string {
	if r.Stage != "" {
		return r.Stage
	}
	if stageID, ok := stageOf[r.ID]; ok {
		return stageID
	}
	return specmodel.GlobalStage
}

// filterEnvironment slices every TimeSeries entry to the resolved stage's
// [start, end) window; non-timeseries values and the global stage pass
// through unchanged.
func filterEnvironment(env expr.Environment, stageID string, timeline specmodel.StageTimeline) expr.Environment {
	if stageID == specmodel.GlobalStage {
		return env
	}
	window, ok := timeline[stageID]
	if !ok {
		return env
	}

	out := make(expr.Environment, len(env))
	for k, v := range env {
		if v.Kind == expr.KindTimeSeries && v.Series != nil {
			out[k] = sliceSeries(v, window.Start, window.End)
			continue
		}
		out[k] = v
	}
	return out
}

func sliceSeries(v expr.Value, start, end int) expr.Value {
	s := v.Series
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start > end {
		start = end
	}
	return expr.NewSeries(&expr.TimeSeries{
		Timestamps: s.Timestamps[start:end],
		Values:     s.Values[start:end],
	})
}

// missingCalculations returns every calculation id named by the rule that is
// absent from the filtered environment.
func missingCalculations(env expr.Environment, required []string) []string {
	var missing []string
	for _, id := range required {
		if _, ok := env[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
