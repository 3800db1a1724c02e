package apisource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadExtractsDataAndMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {"timestamp": [0, 1, 2], "tc1": [100, 150, 182]},
			"metadata": {"timestamp_column": "timestamp"}
		}`))
	}))
	defer server.Close()

	src := New(server.URL, "timestamp")
	result, err := src.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, result.Data["timestamp"])
	assert.Equal(t, []float64{100, 150, 182}, result.Data["tc1"])
	assert.Equal(t, 3, result.Metadata.RowCount)
	assert.Equal(t, "timestamp", result.Metadata.TimestampColumn)
}

func TestReadInvalidJSONErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	src := New(server.URL, "timestamp")
	_, err := src.Read(context.Background())
	assert.Error(t, err)
}
