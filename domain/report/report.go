// Package report implements result aggregation and the standard-form
// document produced at the end of a run: rule compliance counts, a stable
// envelope shape, and ISO 8601 timing metadata. Raw sensor channels never
// survive into a formatted document — only analyses do.
package report

import (
	"time"

	"github.com/curetrace/engine/domain/specmodel"
)

const (
	formatVersion = "1.0"
	generatedBy   = "curetrace"
)

// RuleSummary is one rule's entry in the formatted document's rules map.
type RuleSummary struct {
	RuleName      string        `json:"rule_name"`
	Passed        bool          `json:"passed"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// RuleCompliance is the aggregated view over a set of rule results.
type RuleCompliance struct {
	TotalRules  int                    `json:"total_rules"`
	PassedRules int                    `json:"passed_rules"`
	FailedRules int                    `json:"failed_rules"`
	Rules       map[string]RuleSummary `json:"rules"`
}

// Timing carries the three ISO 8601 timestamps the standard document
// reports.
type Timing struct {
	RequestTime    string `json:"request_time"`
	ExecutionTime  string `json:"execution_time"`
	GenerationTime string `json:"generation_time"`
}

// Metadata is the formatted document's metadata block.
type Metadata struct {
	FormatVersion string `json:"format_version"`
	GeneratedBy   string `json:"generated_by"`
	Algorithm     string `json:"algorithm"`
	Timing        Timing `json:"timing"`
}

// Document is the standard-form output of a run.
type Document struct {
	AnalysisSummary AnalysisSummary            `json:"analysis_summary"`
	Results         []ResultEntry              `json:"results"`
	Metadata        Metadata                   `json:"metadata"`
}

// AnalysisSummary is the document's top-level status block.
type AnalysisSummary struct {
	TotalResults int    `json:"total_results"`
	Status       string `json:"status"`
}

// ResultEntry wraps one aggregated rule-compliance block. The standard form
// carries exactly one entry per run; other entries are reserved for future
// non-rule analyses.
type ResultEntry struct {
	RuleCompliance RuleCompliance `json:"rule_compliance"`
}

// Aggregate groups rule results into a RuleCompliance block, counting
// passed/failed.
func Aggregate(results []specmodel.RuleResult) RuleCompliance {
	rc := RuleCompliance{Rules: make(map[string]RuleSummary, len(results))}
	for _, r := range results {
		rc.TotalRules++
		if r.Passed {
			rc.PassedRules++
		} else {
			rc.FailedRules++
		}
		rc.Rules[r.RuleID] = RuleSummary{
			RuleName: r.RuleID,
			Passed:   r.Passed,
		}
	}
	return rc
}

// FormatStandard builds the standard-form document for one run's results.
// requestTime is the run's originating request timestamp; executionTime
// accepts either an ISO 8601 string or the legacy compact
// YYYYMMDD_HHMMSS form, normalized to ISO 8601 in the output.
func FormatStandard(results []specmodel.RuleResult, algorithm, requestTime, executionTime string) Document {
	rc := Aggregate(results)

	status := "completed"
	if rc.FailedRules > 0 {
		status = "completed_with_failures"
	}

	return Document{
		AnalysisSummary: AnalysisSummary{TotalResults: 1, Status: status},
		Results:         []ResultEntry{{RuleCompliance: rc}},
		Metadata: Metadata{
			FormatVersion: formatVersion,
			GeneratedBy:   generatedBy,
			Algorithm:     algorithm,
			Timing: Timing{
				RequestTime:    requestTime,
				ExecutionTime:  normalizeTimestamp(executionTime),
				GenerationTime: time.Now().UTC().Format(time.RFC3339),
			},
		},
	}
}

// normalizeTimestamp converts a legacy compact YYYYMMDD_HHMMSS timestamp
// into ISO 8601; an already-ISO or otherwise-shaped string passes through
// unchanged.
func normalizeTimestamp(ts string) string {
	if ts == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse("20060102_150405", ts); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return ts
}
