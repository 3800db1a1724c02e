package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/domain/specmodel"
)

func TestAggregateCountsPassFail(t *testing.T) {
	results := []specmodel.RuleResult{
		{RuleID: "r1", Passed: true},
		{RuleID: "r2", Passed: false},
		{RuleID: "r3", Passed: true},
	}
	rc := Aggregate(results)
	assert.Equal(t, 3, rc.TotalRules)
	assert.Equal(t, 2, rc.PassedRules)
	assert.Equal(t, 1, rc.FailedRules)
	require.Contains(t, rc.Rules, "r2")
	assert.False(t, rc.Rules["r2"].Passed)
}

func TestFormatStandardStatusReflectsFailures(t *testing.T) {
	doc := FormatStandard([]specmodel.RuleResult{{RuleID: "r1", Passed: false}}, "autoclave_v1", "2026-07-30T00:00:00Z", "")
	assert.Equal(t, "completed_with_failures", doc.AnalysisSummary.Status)
	assert.Equal(t, "autoclave_v1", doc.Metadata.Algorithm)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, 1, doc.Results[0].RuleCompliance.FailedRules)
}

func TestFormatStandardAllPassed(t *testing.T) {
	doc := FormatStandard([]specmodel.RuleResult{{RuleID: "r1", Passed: true}}, "autoclave_v1", "2026-07-30T00:00:00Z", "")
	assert.Equal(t, "completed", doc.AnalysisSummary.Status)
}

func TestNormalizeTimestampLegacyCompactForm(t *testing.T) {
	got := normalizeTimestamp("20260730_153000")
	assert.Equal(t, "2026-07-30T15:30:00Z", got)
}

func TestNormalizeTimestampPassesThroughISO(t *testing.T) {
	got := normalizeTimestamp("2026-07-30T15:30:00Z")
	assert.Equal(t, "2026-07-30T15:30:00Z", got)
}
