package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallsBackOnBlank(t *testing.T) {
	t.Setenv("CURETRACE_TEST_VAR", "")
	assert.Equal(t, "default", GetEnv("CURETRACE_TEST_VAR", "default"))

	t.Setenv("CURETRACE_TEST_VAR", "set")
	assert.Equal(t, "set", GetEnv("CURETRACE_TEST_VAR", "default"))
}

func TestGetEnvIntFallsBackOnParseFailure(t *testing.T) {
	t.Setenv("CURETRACE_TEST_INT", "not-a-number")
	assert.Equal(t, 5, GetEnvInt("CURETRACE_TEST_INT", 5))

	t.Setenv("CURETRACE_TEST_INT", "7")
	assert.Equal(t, 7, GetEnvInt("CURETRACE_TEST_INT", 5))
}

func TestGetEnvBoolFallsBackOnParseFailure(t *testing.T) {
	t.Setenv("CURETRACE_TEST_BOOL", "nope")
	assert.True(t, GetEnvBool("CURETRACE_TEST_BOOL", true))

	t.Setenv("CURETRACE_TEST_BOOL", "false")
	assert.False(t, GetEnvBool("CURETRACE_TEST_BOOL", true))
}

func TestParseDurationOrDefault(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDurationOrDefault("5s", time.Second))
	assert.Equal(t, time.Second, ParseDurationOrDefault("garbage", time.Second))
	assert.Equal(t, time.Second, ParseDurationOrDefault("", time.Second))
}

func TestLoadStartupConfigDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadStartupConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, dir+"/templates", cfg.TemplatesRoot)
	assert.Equal(t, 2, cfg.WorkflowCacheSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadStartupConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENGINE_WORKFLOW_CACHE_SIZE", "9")
	cfg, err := LoadStartupConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.WorkflowCacheSize)
}
