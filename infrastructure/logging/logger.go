// Package logging provides structured logging with trace ID support.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	// TraceIDKey is the context key for the run's trace ID.
	TraceIDKey ContextKey = "trace_id"
	// WorkflowKey is the context key for the active workflow name.
	WorkflowKey ContextKey = "workflow"
	// SpecificationKey is the context key for the active specification id.
	SpecificationKey ContextKey = "specification_id"
	// ServiceKey is the context key for the service/component name.
	ServiceKey ContextKey = "service"
)

// Logger wraps logrus.Logger with engine-specific structured helpers.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a new Logger instance.
func New(service, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{
		Logger:  logger,
		service: service,
	}
}

// NewFromEnv constructs a logger using LOG_LEVEL and LOG_FORMAT environment
// variables. Defaults to "info" and "json" when unset.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithContext creates a new logger entry carrying request-scoped context values.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)

	if traceID := ctx.Value(TraceIDKey); traceID != nil {
		entry = entry.WithField("trace_id", traceID)
	}
	if workflow := ctx.Value(WorkflowKey); workflow != nil {
		entry = entry.WithField("workflow", workflow)
	}
	if specID := ctx.Value(SpecificationKey); specID != nil {
		entry = entry.WithField("specification_id", specID)
	}

	return entry
}

// WithTraceID creates a new logger entry scoped to a run's trace ID.
func (l *Logger) WithTraceID(traceID string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"service":  l.service,
		"trace_id": traceID,
	})
}

// WithFields creates a new logger entry with custom fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["service"] = l.service
	return l.Logger.WithFields(fields)
}

// WithError creates a new logger entry with an error attached.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"service": l.service,
		"error":   err.Error(),
	})
}

// SetOutput sets the logger output.
func (l *Logger) SetOutput(output io.Writer) {
	l.Logger.SetOutput(output)
}

// Context helper functions.

// NewTraceID generates a new trace ID for a run.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithWorkflow adds the active workflow name to the context.
func WithWorkflow(ctx context.Context, workflow string) context.Context {
	return context.WithValue(ctx, WorkflowKey, workflow)
}

// GetWorkflow retrieves the active workflow name from context.
func GetWorkflow(ctx context.Context) string {
	if workflow, ok := ctx.Value(WorkflowKey).(string); ok {
		return workflow
	}
	return ""
}

// WithSpecification adds the active specification id to the context.
func WithSpecification(ctx context.Context, specID string) context.Context {
	return context.WithValue(ctx, SpecificationKey, specID)
}

// GetSpecification retrieves the active specification id from context.
func GetSpecification(ctx context.Context) string {
	if specID, ok := ctx.Value(SpecificationKey).(string); ok {
		return specID
	}
	return ""
}

// Domain-specific structured logging helpers.

// LogRunStart logs the start of a workflow run.
func (l *Logger) LogRunStart(ctx context.Context, workflowName, specificationID string, taskCount int) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"workflow":         workflowName,
		"specification_id": specificationID,
		"task_count":       taskCount,
	}).Info("run starting")
}

// LogRunEnd logs the completion of a workflow run.
func (l *Logger) LogRunEnd(ctx context.Context, success bool, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"success":     success,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("run failed")
		return
	}
	entry.Info("run completed")
}

// LogTaskExecution logs the result of a single orchestrator task.
func (l *Logger) LogTaskExecution(ctx context.Context, taskID, implementation string, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"task_id":        taskID,
		"implementation": implementation,
		"duration_ms":    duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("task failed")
		return
	}
	entry.Debug("task completed")
}

// LogStageDetection logs the outcome of stage detection for a run.
func (l *Logger) LogStageDetection(ctx context.Context, stageCount int, warnings []string) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"stage_count": stageCount,
		"warnings":    len(warnings),
	})
	if len(warnings) > 0 {
		entry.WithField("detail", warnings).Warn("stage detection completed with warnings")
		return
	}
	entry.Debug("stage detection completed")
}

// LogRuleEvaluation logs the outcome of a single rule evaluation.
func (l *Logger) LogRuleEvaluation(ctx context.Context, ruleID string, passed bool, severity string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"rule_id":  ruleID,
		"passed":   passed,
		"severity": severity,
	}).Debug("rule evaluated")
}

// LogCacheEvent logs a workflow plan cache hit or miss.
func (l *Logger) LogCacheEvent(ctx context.Context, workflowName string, hit bool) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"workflow": workflowName,
		"hit":      hit,
	}).Debug("plan cache lookup")
}

// LogAdapterCall logs a source/sink adapter invocation.
func (l *Logger) LogAdapterCall(ctx context.Context, adapter, operation string, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"adapter":     adapter,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("adapter call failed")
		return
	}
	entry.Debug("adapter call completed")
}

// Fatal logs a fatal error and exits.
func (l *Logger) Fatal(ctx context.Context, message string, err error) {
	l.WithContext(ctx).WithError(err).Fatal(message)
}

// Debug logs a debug message.
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).Debug(message)
}

// Info logs an info message.
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).Info(message)
}

// Warn logs a warning message.
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).Warn(message)
}

// Error logs an error message.
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	entry := l.WithContext(ctx)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.WithFields(fields).Error(message)
}

// Global logger instance, initialized once at process startup.
var defaultLogger *Logger

// InitDefault initializes the default logger.
func InitDefault(service, level, format string) {
	defaultLogger = New(service, level, format)
}

// Default returns the default logger, lazily falling back to a basic one.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New("engine", "info", "json")
	}
	return defaultLogger
}

// InfoDefault logs an info message using the default logger.
func InfoDefault(ctx context.Context, message string) {
	Default().WithContext(ctx).Info(message)
}

// ErrorDefault logs an error message using the default logger.
func ErrorDefault(ctx context.Context, message string, err error) {
	Default().WithContext(ctx).WithError(err).Error(message)
}

// WarnDefault logs a warning message using the default logger.
func WarnDefault(ctx context.Context, message string) {
	Default().WithContext(ctx).Warn(message)
}

// FormatDuration formats a duration in milliseconds for log fields.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
}
