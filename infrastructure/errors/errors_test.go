package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeClassification(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(SpecNotFound("autoclave_v1")))
	assert.Equal(t, 1, ExitCode(ParseError("1 +", errors.New("unexpected eof"))))
	assert.Equal(t, 3, ExitCode(WorkflowError("cycle detected", nil)))
	assert.Equal(t, 3, ExitCode(errors.New("unclassified")))
}

func TestServiceErrorUnwrapAndDetails(t *testing.T) {
	inner := errors.New("boom")
	svcErr := BindingError("{chamber_temp}", inner).WithDetails("extra", "info")

	assert.ErrorIs(t, svcErr, inner)
	assert.Equal(t, "info", svcErr.Details["extra"])
	assert.Equal(t, "{chamber_temp}", svcErr.Details["placeholder"])
}

func TestIsServiceErrorAndGetHTTPStatus(t *testing.T) {
	svcErr := SpecNotFound("missing_id")
	assert.True(t, IsServiceError(svcErr))
	assert.Equal(t, 404, GetHTTPStatus(svcErr))
	assert.True(t, Is(svcErr, ErrCodeSpecNotFound))
	assert.False(t, Is(svcErr, ErrCodeConfigError))

	plain := errors.New("plain")
	assert.False(t, IsServiceError(plain))
	assert.Equal(t, 500, GetHTTPStatus(plain))
}
