package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/certbloom/certbloom/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorCarriesField(t *testing.T) {
	err := errors.NewValidationError("userAnswers", "must match questionIds length")

	assert.Equal(t, "userAnswers", err.Field)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Error(), "userAnswers")
	assert.True(t, errors.IsValidation(err))
	assert.False(t, errors.IsNotFound(err))
}

func TestStoreUnavailableUnwraps(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.NewStoreUnavailableError(cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.IsStoreUnavailable(err))
}

func TestAsFindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("completing session: %w", errors.NewNotFoundError("session", "s-1"))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	assert.Equal(t, "session not found: s-1", appErr.Message)
	assert.True(t, errors.IsNotFound(wrapped))

	_, ok = errors.As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestConflictError(t *testing.T) {
	err := errors.NewConflictError("session already completed")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.IsConflict(err))
}
