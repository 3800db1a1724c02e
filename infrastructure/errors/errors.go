// Package errors provides unified error handling for the analytics engine.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique engine error code.
type ErrorCode string

const (
	// Configuration-loading errors.
	ErrCodeConfigError        ErrorCode = "CFG_1001"
	ErrCodeSpecNotFound       ErrorCode = "CFG_1002"
	ErrCodeUnresolvedTemplate ErrorCode = "CFG_1003"
	ErrCodeDanglingReference  ErrorCode = "CFG_1004"

	// Runtime binding errors.
	ErrCodeBindingError ErrorCode = "BIND_2001"

	// Expression and calculation errors.
	ErrCodeParseError ErrorCode = "EXPR_3001"
	ErrCodeCalcError  ErrorCode = "EXPR_3002"

	// Rule evaluation — recovered locally into a failed RuleResult, but the
	// code still exists so the recovery path can be logged consistently.
	ErrCodeRuleFailure ErrorCode = "RULE_4001"

	// Orchestration errors.
	ErrCodeWorkflowError ErrorCode = "WF_5001"
	ErrCodeCancelled     ErrorCode = "WF_5002"

	// Adapter / transport errors (ambient, not named in the core taxonomy).
	ErrCodeAdapterError ErrorCode = "ADPT_6001"
	ErrCodeInternal     ErrorCode = "SVC_9001"
)

// ServiceError represents a structured error with a code, message, and HTTP status.
type ServiceError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails adds additional structured details to the error.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new ServiceError.
func New(code ErrorCode, message string, httpStatus int) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error with a ServiceError.
func Wrap(code ErrorCode, message string, httpStatus int, err error) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Configuration errors.

// ConfigError reports a malformed or unreadable on-disk configuration document.
func ConfigError(path string, err error) *ServiceError {
	return Wrap(ErrCodeConfigError, "configuration load failed", http.StatusInternalServerError, err).
		WithDetails("path", path)
}

// SpecNotFound reports that a specification id has no matching registry entry.
func SpecNotFound(specificationID string) *ServiceError {
	return New(ErrCodeSpecNotFound, "specification not found", http.StatusNotFound).
		WithDetails("specification_id", specificationID)
}

// UnresolvedTemplate reports a template reference that has no matching template record.
func UnresolvedTemplate(templateID string) *ServiceError {
	return New(ErrCodeUnresolvedTemplate, "template reference could not be resolved", http.StatusUnprocessableEntity).
		WithDetails("template_id", templateID)
}

// DanglingReference reports a reference to a calculation, rule, or stage id that
// does not exist in the bound specification.
func DanglingReference(kind, id string) *ServiceError {
	return New(ErrCodeDanglingReference, "dangling reference", http.StatusUnprocessableEntity).
		WithDetails("kind", kind).
		WithDetails("id", id)
}

// Binding errors.

// BindingError reports a failure while substituting a sensor grouping into a template.
func BindingError(placeholder string, err error) *ServiceError {
	return Wrap(ErrCodeBindingError, "runtime binding failed", http.StatusUnprocessableEntity, err).
		WithDetails("placeholder", placeholder)
}

// Expression and calculation errors.

// ParseError reports a lexer or parser failure against a condition or formula string.
func ParseError(expression string, err error) *ServiceError {
	return Wrap(ErrCodeParseError, "expression parse failed", http.StatusUnprocessableEntity, err).
		WithDetails("expression", expression)
}

// CalcError reports a fatal failure in the calculation engine: an undefined
// sensor group reference or a formula evaluation error.
func CalcError(calculationID string, err error) *ServiceError {
	return Wrap(ErrCodeCalcError, "calculation failed", http.StatusUnprocessableEntity, err).
		WithDetails("calculation_id", calculationID)
}

// Rule evaluation.

// RuleFailure reports a rule whose evaluation raised instead of producing a
// compliance verdict. Callers recover this into a failed RuleResult; it is
// never propagated past the rule evaluator.
func RuleFailure(ruleID string, err error) *ServiceError {
	return Wrap(ErrCodeRuleFailure, "rule evaluation failed", http.StatusOK, err).
		WithDetails("rule_id", ruleID)
}

// Orchestration errors.

// WorkflowError reports an execution-plan construction failure (cycle, missing
// dependency, unknown layer type) or a task execution failure.
func WorkflowError(detail string, err error) *ServiceError {
	return Wrap(ErrCodeWorkflowError, "workflow error", http.StatusUnprocessableEntity, err).
		WithDetails("detail", detail)
}

// Cancelled reports a run that terminated because its context was cancelled
// between tasks.
func Cancelled(workflowName string) *ServiceError {
	return New(ErrCodeCancelled, "run cancelled", http.StatusOK).
		WithDetails("workflow", workflowName)
}

// Ambient / adapter errors.

// AdapterError reports a source or sink adapter failure (read/write/connect).
func AdapterError(adapter, operation string, err error) *ServiceError {
	return Wrap(ErrCodeAdapterError, "adapter operation failed", http.StatusBadGateway, err).
		WithDetails("adapter", adapter).
		WithDetails("operation", operation)
}

// Internal wraps an otherwise-unclassified error.
func Internal(message string, err error) *ServiceError {
	return Wrap(ErrCodeInternal, message, http.StatusInternalServerError, err)
}

// Helper functions.

// IsServiceError checks whether an error is, or wraps, a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// GetServiceError extracts a ServiceError from an error chain.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// GetHTTPStatus returns the HTTP status code associated with an error.
func GetHTTPStatus(err error) int {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Is reports whether err is (or wraps) a ServiceError with the given code.
func Is(err error, code ErrorCode) bool {
	if serviceErr := GetServiceError(err); serviceErr != nil {
		return serviceErr.Code == code
	}
	return false
}

// ExitCode maps an error to the process exit code conventions: 0 success,
// 1 validation error prior to execution, 2 configuration error, 3 runtime
// task failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	serviceErr := GetServiceError(err)
	if serviceErr == nil {
		return 3
	}
	switch serviceErr.Code {
	case ErrCodeConfigError, ErrCodeSpecNotFound, ErrCodeUnresolvedTemplate, ErrCodeDanglingReference:
		return 2
	case ErrCodeBindingError, ErrCodeParseError:
		return 1
	default:
		return 3
	}
}
