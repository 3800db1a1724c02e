package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"gopkg.in/yaml.v3"
)

// GetEnv returns the environment variable's value, or defaultValue when unset
// or blank.
func GetEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

// GetEnvBool parses a boolean environment variable, falling back to
// defaultValue on absence or parse failure.
func GetEnvBool(key string, defaultValue bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvInt parses an integer environment variable, falling back to
// defaultValue on absence or parse failure.
func GetEnvInt(key string, defaultValue int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// ParseDurationOrDefault parses a duration string, falling back to
// defaultValue on empty input or parse failure.
func ParseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

// StartupConfig is the process-level configuration read from
// config/startup_config.yaml, with environment variables taking precedence
// over file values the way the surrounding ambient stack prefers env-first
// overrides in containerized deployments.
type StartupConfig struct {
	TemplatesRoot      string
	SpecificationsRoot string
	WorkflowCacheSize  int
	LogLevel           string
	LogFormat          string
}

// LoadStartupConfig reads startup_config.yaml from configRoot and applies
// environment-variable overrides (ENGINE_TEMPLATES_ROOT,
// ENGINE_SPECIFICATIONS_ROOT, ENGINE_WORKFLOW_CACHE_SIZE, LOG_LEVEL,
// LOG_FORMAT).
func LoadStartupConfig(configRoot string) (StartupConfig, error) {
	path := configRoot + "/startup_config.yaml"
	cfg := StartupConfig{
		TemplatesRoot:      configRoot + "/templates",
		SpecificationsRoot: configRoot + "/specifications",
		WorkflowCacheSize:  2,
		LogLevel:           "info",
		LogFormat:          "json",
	}

	data, ok, err := readOptional(path)
	if err != nil {
		return StartupConfig{}, err
	}
	if ok {
		var doc startupConfigDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return StartupConfig{}, engineerrors.ConfigError(path, err)
		}
		if doc.TemplatesRoot != "" {
			cfg.TemplatesRoot = doc.TemplatesRoot
		}
		if doc.SpecificationsRoot != "" {
			cfg.SpecificationsRoot = doc.SpecificationsRoot
		}
		if doc.WorkflowCacheSize > 0 {
			cfg.WorkflowCacheSize = doc.WorkflowCacheSize
		}
		if doc.LogLevel != "" {
			cfg.LogLevel = doc.LogLevel
		}
		if doc.LogFormat != "" {
			cfg.LogFormat = doc.LogFormat
		}
	}

	cfg.TemplatesRoot = GetEnv("ENGINE_TEMPLATES_ROOT", cfg.TemplatesRoot)
	cfg.SpecificationsRoot = GetEnv("ENGINE_SPECIFICATIONS_ROOT", cfg.SpecificationsRoot)
	cfg.WorkflowCacheSize = GetEnvInt("ENGINE_WORKFLOW_CACHE_SIZE", cfg.WorkflowCacheSize)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = GetEnv("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}
