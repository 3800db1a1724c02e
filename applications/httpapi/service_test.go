package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/applications/runner"
	"github.com/curetrace/engine/infrastructure/config"
	"github.com/curetrace/engine/infrastructure/logging"
)

func newTestRunner(t *testing.T) *runner.Runner {
	t.Helper()
	r, err := runner.New(config.StartupConfig{
		TemplatesRoot:      t.TempDir(),
		SpecificationsRoot: t.TempDir(),
		WorkflowCacheSize:  2,
		LogLevel:           "error",
		LogFormat:          "text",
	}, logging.New("httpapi_test", "error", "text"))
	require.NoError(t, err)
	return r
}

func TestServiceStartServeStop(t *testing.T) {
	svc := NewService("127.0.0.1:0", newTestRunner(t))

	require.NoError(t, svc.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Stop(ctx)
	}()

	addr := svc.Addr()
	require.NotEmpty(t, addr)

	body, err := json.Marshal(map[string]string{})
	require.NoError(t, err)
	resp, err := http.Post("http://"+addr+"/v1/runs", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServiceStopWithoutStartIsNoop(t *testing.T) {
	svc := NewService("127.0.0.1:0", newTestRunner(t))
	assert.NoError(t, svc.Stop(context.Background()))
}

func TestServiceStartTwiceIsIdempotent(t *testing.T) {
	svc := NewService("127.0.0.1:0", newTestRunner(t))
	require.NoError(t, svc.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Stop(ctx)
	}()
	assert.NoError(t, svc.Start(context.Background()))
}
