package report

import (
	"fmt"
	"math"

	"github.com/curetrace/engine/domain/specmodel"
)

// Inconsistency flags one numeric rule field whose values vary more than the
// consistency check's tolerance across a batch of results (meaningful only
// when comparing several runs of the same specification).
type Inconsistency struct {
	Field                  string
	CoefficientOfVariation float64
}

// ValidationReport is an advisory cross-run consistency check; it never
// blocks a run's completion and is not part of the standard document.
type ValidationReport struct {
	IsConsistent      bool
	Inconsistencies   []Inconsistency
	ConsistencyScore  float64
}

// Validate compares numeric actual_value fields across a batch of
// ComplianceReports (e.g. repeated runs of the same specification) and
// flags rules whose coefficient of variation exceeds the given tolerance.
// It has no effect on pass/fail status and is purely advisory; the run
// pipeline does not call it.
func Validate(reports []specmodel.ComplianceReport, tolerance float64) ValidationReport {
	vr := ValidationReport{IsConsistent: true, ConsistencyScore: 1.0}
	if len(reports) < 2 {
		return vr
	}

	byField := map[string][]float64{}
	for _, report := range reports {
		for _, r := range report.Rules {
			f, ok := r.ActualValue.(float64)
			if !ok {
				continue
			}
			byField[r.RuleID] = append(byField[r.RuleID], f)
		}
	}

	fieldCount := len(byField)
	for field, values := range byField {
		if len(values) < 2 {
			continue
		}
		mean := meanOf(values)
		if mean == 0 {
			continue
		}
		cv := stddevOf(values, mean) / math.Abs(mean)
		if cv > tolerance {
			vr.IsConsistent = false
			vr.Inconsistencies = append(vr.Inconsistencies, Inconsistency{Field: field, CoefficientOfVariation: cv})
		}
	}

	if len(vr.Inconsistencies) > 0 && fieldCount > 0 {
		vr.ConsistencyScore = 1.0 - float64(len(vr.Inconsistencies))/float64(fieldCount)
	}
	return vr
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddevOf(xs []float64, mean float64) float64 {
	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

// Warnings renders a ValidationReport's inconsistencies as human-readable
// warning strings suitable for ComplianceReport.Warnings.
func (vr ValidationReport) Warnings() []string {
	warnings := make([]string, 0, len(vr.Inconsistencies))
	for _, inc := range vr.Inconsistencies {
		warnings = append(warnings, fmt.Sprintf("inconsistent field %q: coefficient of variation %.3f", inc.Field, inc.CoefficientOfVariation))
	}
	return warnings
}
