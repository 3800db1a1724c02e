package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/applications/runner"
	"github.com/curetrace/engine/infrastructure/config"
	"github.com/curetrace/engine/infrastructure/logging"
)

func newTestHandler(t *testing.T) *handler {
	t.Helper()
	templatesRoot := t.TempDir()
	specRoot := t.TempDir()
	specDir := filepath.Join(specRoot, "autoclave_v1")
	require.NoError(t, os.MkdirAll(specDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "specification.yaml"), []byte("version: \"1\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "calculations.yaml"), []byte(`calculations:
  - id: peak_temp
    type: calculated
    formula: "MAX(chamber_temp)"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, "rules.yaml"), []byte(`rules:
  - id: peak_ok
    condition: "peak_temp > 180"
    severity: critical
`), 0o644))

	r, err := runner.New(config.StartupConfig{
		TemplatesRoot:      templatesRoot,
		SpecificationsRoot: specRoot,
		WorkflowCacheSize:  2,
		LogLevel:           "error",
		LogFormat:          "text",
	}, logging.New("httpapi_test", "error", "text"))
	require.NoError(t, err)
	return &handler{runner: r}
}

func TestPostRunReturnsCompletedResult(t *testing.T) {
	h := newTestHandler(t)

	body, err := json.Marshal(runRequest{
		WorkflowID:      "run-1",
		SpecificationID: "autoclave_v1",
		RawData: runRequestRawData{
			Channels:         map[string][]float64{"chamber_temp": {100, 150, 182}},
			TimestampChannel: "timestamp",
			Timestamps:       []int64{0, 1, 2},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.postRun(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp runner.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
}

func TestPostRunUnknownSpecReturnsUnprocessable(t *testing.T) {
	h := newTestHandler(t)

	body, err := json.Marshal(runRequest{WorkflowID: "run-1", SpecificationID: "missing"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.postRun(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostRunMalformedJSONReturnsBadRequest(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader([]byte(`{"unknown_field": true}`)))
	rec := httptest.NewRecorder()
	h.postRun(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
