package github

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiError(statusCode int, message string) *github.ErrorResponse {
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: statusCode},
		Message:  message,
	}
}

func TestGitHubError_Error(t *testing.T) {
	err := &GitHubError{Type: ErrorTypeAuth, Message: "bad token"}
	assert.Equal(t, "authentication error: bad token", err.Error())

	err.Resource = "label bug"
	assert.Equal(t, "authentication error for label bug: bad token", err.Error())
}

func TestGitHubError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewGitHubError(ErrorTypeNetwork, "network trouble", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, err.IsRetryable())
}

func TestWrapGitHubError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		resource     string
		expectedType ErrorType
		retryable    bool
	}{
		{
			name:         "unauthorized",
			err:          apiError(http.StatusUnauthorized, "bad credentials"),
			resource:     "label bug",
			expectedType: ErrorTypeAuth,
			retryable:    false,
		},
		{
			name:         "forbidden rate limit",
			err:          apiError(http.StatusForbidden, "API rate limit exceeded"),
			resource:     "label bug",
			expectedType: ErrorTypeRateLimit,
			retryable:    true,
		},
		{
			name:         "forbidden permissions",
			err:          apiError(http.StatusForbidden, "must have admin rights"),
			resource:     "label bug",
			expectedType: ErrorTypePermission,
			retryable:    false,
		},
		{
			name:         "not found",
			err:          apiError(http.StatusNotFound, "Not Found"),
			resource:     "repository test-owner/test-repo",
			expectedType: ErrorTypeNotFound,
			retryable:    false,
		},
		{
			name:         "validation",
			err:          apiError(http.StatusUnprocessableEntity, "Validation Failed"),
			resource:     "label bug",
			expectedType: ErrorTypeValidation,
			retryable:    false,
		},
		{
			name:         "server error",
			err:          apiError(http.StatusBadGateway, "Bad Gateway"),
			resource:     "label bug",
			expectedType: ErrorTypeNetwork,
			retryable:    true,
		},
		{
			name:         "network error",
			err:          errors.New("dial tcp: connection refused"),
			resource:     "label bug",
			expectedType: ErrorTypeNetwork,
			retryable:    true,
		},
		{
			name:         "unknown error",
			err:          errors.New("something odd"),
			resource:     "label bug",
			expectedType: ErrorTypeUnknown,
			retryable:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapGitHubError(tt.err, tt.resource)

			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expectedType, wrapped.Type)
			assert.Equal(t, tt.retryable, wrapped.Retryable)
			assert.Equal(t, tt.resource, wrapped.Resource)
		})
	}
}

func TestWrapGitHubError_Nil(t *testing.T) {
	assert.Nil(t, WrapGitHubError(nil, "label bug"))
}

func TestWrapGitHubError_PreservesExistingGitHubError(t *testing.T) {
	original := &GitHubError{Type: ErrorTypeValidation, Message: "bad color"}

	wrapped := WrapGitHubError(original, "label bug")

	assert.Same(t, original, wrapped)
	assert.Equal(t, "label bug", wrapped.Resource)
}

func TestWithRetry_SucceedsAfterRetryableErrors(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	attempts := 0
	err := WithRetry(func() error {
		attempts++
		if attempts < 3 {
			return NewGitHubError(ErrorTypeNetwork, "transient", nil)
		}
		return nil
	}, config)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_DoesNotRetryNonRetryableErrors(t *testing.T) {
	attempts := 0
	err := WithRetry(func() error {
		attempts++
		return NewGitHubError(ErrorTypeValidation, "bad input", nil)
	}, DefaultRetryConfig())

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_DoesNotRetryPlainErrors(t *testing.T) {
	attempts := 0
	err := WithRetry(func() error {
		attempts++
		return errors.New("plain error")
	}, DefaultRetryConfig())

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	config := &RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	attempts := 0
	err := WithRetry(func() error {
		attempts++
		return NewGitHubError(ErrorTypeNetwork, "still down", nil)
	}, config)

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "after 2 retries")
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors

	assert.False(t, errs.HasErrors())
	assert.Equal(t, "validation failed", errs.Error())

	errs.Add("name", "", "name is required")
	assert.True(t, errs.HasErrors())
	assert.Contains(t, errs.Error(), "name is required")

	errs.Add("color", "red", "must be hex")
	assert.Contains(t, errs.Error(), "2 errors")
}

func TestPartialFailureError(t *testing.T) {
	err := NewPartialFailureError(
		[]string{"label bug"},
		map[string]error{"label feature": errors.New("boom")},
	)

	assert.Contains(t, err.Error(), "1 operations succeeded, 1 failed")
	assert.Equal(t, []string{"label bug"}, err.GetSucceededOperations())
	assert.Equal(t, []string{"label feature"}, err.GetFailedOperations())
}
