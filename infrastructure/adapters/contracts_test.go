package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePathSubstitutesAllTokens(t *testing.T) {
	got := ResolvePath("results/{process_id}/{series_id}/{calculation_date}.json", PathContext{
		ProcessID:       "P-100",
		SeriesID:        "S-7",
		CalculationDate: "2026-07-30",
	})
	assert.Equal(t, "results/P-100/S-7/2026-07-30.json", got)
}

func TestResolvePathLeavesUnmatchedTextUntouched(t *testing.T) {
	got := ResolvePath("static/path.json", PathContext{ProcessID: "P-100"})
	assert.Equal(t, "static/path.json", got)
}
