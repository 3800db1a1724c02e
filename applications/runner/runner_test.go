package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/domain/specmodel"
	"github.com/curetrace/engine/infrastructure/config"
	"github.com/curetrace/engine/infrastructure/logging"
)

func writeFixtureSpec(t *testing.T, specRoot, id string) {
	t.Helper()
	dir := filepath.Join(specRoot, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specification.yaml"), []byte("version: \"1\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calculations.yaml"), []byte(`calculations:
  - id: peak_temp
    type: calculated
    formula: "MAX(chamber_temp)"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(`rules:
  - id: peak_ok
    condition: "peak_temp > 180"
    severity: critical
`), 0o644))
}

func newTestRunner(t *testing.T, specID string) *Runner {
	t.Helper()
	templatesRoot := t.TempDir()
	specRoot := t.TempDir()
	writeFixtureSpec(t, specRoot, specID)

	r, err := New(config.StartupConfig{
		TemplatesRoot:      templatesRoot,
		SpecificationsRoot: specRoot,
		WorkflowCacheSize:  4,
		LogLevel:           "error",
		LogFormat:          "text",
	}, logging.New("runner_test", "error", "text"))
	require.NoError(t, err)
	return r
}

func TestRunProducesCompletedResponse(t *testing.T) {
	r := newTestRunner(t, "autoclave_v1")

	raw := &specmodel.RawData{
		Channels: map[string][]float64{
			"chamber_temp": {100, 150, 182, 160},
			"timestamp":    {0, 1, 2, 3},
		},
		TimestampChannel: "timestamp",
		Timestamps:       []int64{0, 1, 2, 3},
		Length:           4,
	}

	resp := r.Run(context.Background(), Request{
		WorkflowID:       "run-1",
		SpecificationID:  "autoclave_v1",
		RawData:          raw,
		SamplingInterval: 1,
	})

	require.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Preview)
	assert.Equal(t, 0, ExitCode(resp))
	require.Len(t, resp.Preview.Results, 1)
	assert.Equal(t, 1, resp.Preview.Results[0].RuleCompliance.TotalRules)
	assert.Equal(t, 1, resp.Preview.Results[0].RuleCompliance.PassedRules)
}

func TestRunCachesExecutionPlanAcrossCalls(t *testing.T) {
	r := newTestRunner(t, "autoclave_v1")
	raw := &specmodel.RawData{
		Channels: map[string][]float64{
			"chamber_temp": {100, 150, 182},
			"timestamp":    {0, 1, 2},
		},
		TimestampChannel: "timestamp",
		Timestamps:       []int64{0, 1, 2},
		Length:           3,
	}
	req := Request{WorkflowID: "run-cache", SpecificationID: "autoclave_v1", RawData: raw, SamplingInterval: 1}

	first := r.Run(context.Background(), req)
	require.Equal(t, "completed", first.Status)
	second := r.Run(context.Background(), req)
	require.Equal(t, "completed", second.Status)

	stats := r.Cache.Stats()
	assert.Equal(t, 1, stats.HitCount)
}

func TestRunUnknownSpecificationFails(t *testing.T) {
	r := newTestRunner(t, "autoclave_v1")
	resp := r.Run(context.Background(), Request{
		WorkflowID:      "run-2",
		SpecificationID: "does_not_exist",
		RawData:         &specmodel.RawData{},
	})

	assert.Equal(t, "failed", resp.Status)
	assert.NotEmpty(t, resp.Error)
	assert.NotEqual(t, 0, ExitCode(resp))
}
