package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError_PassesThroughAppErrors(t *testing.T) {
	orig := NewValidationError([]string{"Item 1: Invalid value for field 'quantity'"})
	wrapped := fmt.Errorf("record sale: %w", orig)

	got := GetAppError(wrapped)

	require.Same(t, orig, got)
	assert.Equal(t, http.StatusBadRequest, got.Code)
	assert.Equal(t, []string{"Item 1: Invalid value for field 'quantity'"}, got.Details)
}

func TestGetAppError_DeadlineBecomesTimeout(t *testing.T) {
	err := fmt.Errorf("query products: %w", context.DeadlineExceeded)

	got := GetAppError(err)

	assert.Equal(t, http.StatusGatewayTimeout, got.Code)
	assert.Equal(t, KindTimeout, got.Kind)
	assert.True(t, errors.Is(got, context.DeadlineExceeded))
}

func TestGetAppError_UnknownErrorIsGeneric(t *testing.T) {
	got := GetAppError(errors.New(`pq: relation "sales" does not exist`))

	assert.Equal(t, http.StatusInternalServerError, got.Code)
	assert.Equal(t, "Internal server error", got.Message)
	assert.NotContains(t, got.Message, "relation")
}

func TestPersistenceError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("Failed to record sale", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.True(t, IsKind(err, KindPersistence))
	assert.Equal(t, "Failed to record sale", GetAppError(err).Message)
}

func TestAppError_IsMatchesByKind(t *testing.T) {
	assert.ErrorIs(t, NewNotFoundError("Product"), ErrNotFound)
	assert.NotErrorIs(t, NewNotFoundError("Product"), ErrValidation)
}
