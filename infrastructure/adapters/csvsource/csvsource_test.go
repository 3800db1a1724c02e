package csvsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadParsesChannelsAndMetadata(t *testing.T) {
	path := writeCSV(t, "timestamp,tc1,tc2\n0,100,98\n1,150,148\n2,182,181\n")
	src := New(path, "timestamp")

	result, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Metadata.RowCount)
	assert.Equal(t, 3, result.Metadata.ColumnCount)
	assert.Equal(t, []float64{0, 1, 2}, result.Data["timestamp"])
	assert.Equal(t, []float64{100, 150, 182}, result.Data["tc1"])
}

func TestReadMissingTimestampColumnErrors(t *testing.T) {
	path := writeCSV(t, "tc1,tc2\n100,98\n")
	src := New(path, "timestamp")
	_, err := src.Read(context.Background())
	assert.Error(t, err)
}

func TestReadMalformedNumberErrors(t *testing.T) {
	path := writeCSV(t, "timestamp,tc1\n0,not-a-number\n")
	src := New(path, "timestamp")
	_, err := src.Read(context.Background())
	assert.Error(t, err)
}

func TestReadMissingFileErrors(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "missing.csv"), "timestamp")
	_, err := src.Read(context.Background())
	assert.Error(t, err)
}
