package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeSubmissionFailed, 3},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeApplicationValidationFailed, 0},
		{ErrCodeConsentIncomplete, 0},
		{ErrCodeBookingInvalid, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
			assert.Equal(t, tt.expected > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewDuplicateApplicationError("app-123").WithMetadata("listingId", "1")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "DUPLICATE_APPLICATION", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "DUPLICATE_APPLICATION", vars["errorCode"])
	assert.Equal(t, "app-123", vars["errorDetails"])
	assert.Equal(t, "1", vars["listingId"])
	assert.Equal(t, "DUPLICATE_APPLICATION", vars["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	stdErr := NewDatabaseInsertFailedError(fmt.Errorf("boom"))
	stdErr.Retryable = false

	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestAsStandardError_Wrapped(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	wrapped := fmt.Errorf("insert: %w", NewDatabaseInsertFailedError(cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.ErrorIs(t, stdErr, cause)
}

func TestNormalize_PlainError(t *testing.T) {
	stdErr := Normalize(fmt.Errorf("unexpected"))

	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "unexpected", stdErr.Details)
	assert.False(t, stdErr.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthRequired))
	assert.Equal(t, "APPLICATION", GetErrorCategory(ErrCodeConsentIncomplete))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeElasticsearchConnectionFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "MESSAGING", GetErrorCategory(ErrCodeEventPublishFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeBookingInvalid))
}
