package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/curetrace/engine/domain/specmodel"
)

func TestValidateFlagsHighVarianceField(t *testing.T) {
	reports := []specmodel.ComplianceReport{
		{Rules: []specmodel.RuleResult{{RuleID: "peak_temp", ActualValue: 182.0}}},
		{Rules: []specmodel.RuleResult{{RuleID: "peak_temp", ActualValue: 140.0}}},
	}
	vr := Validate(reports, 0.01)
	assert.False(t, vr.IsConsistent)
	assert.Len(t, vr.Inconsistencies, 1)
	assert.Equal(t, "peak_temp", vr.Inconsistencies[0].Field)
	assert.Len(t, vr.Warnings(), 1)
}

func TestValidateStableFieldIsConsistent(t *testing.T) {
	reports := []specmodel.ComplianceReport{
		{Rules: []specmodel.RuleResult{{RuleID: "peak_temp", ActualValue: 182.0}}},
		{Rules: []specmodel.RuleResult{{RuleID: "peak_temp", ActualValue: 182.1}}},
	}
	vr := Validate(reports, 0.5)
	assert.True(t, vr.IsConsistent)
	assert.Empty(t, vr.Inconsistencies)
	assert.Equal(t, 1.0, vr.ConsistencyScore)
}

func TestValidateSingleReportIsAlwaysConsistent(t *testing.T) {
	vr := Validate([]specmodel.ComplianceReport{{}}, 0.01)
	assert.True(t, vr.IsConsistent)
}
