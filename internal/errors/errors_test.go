package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("book not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("reader: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestStorage_KeepsCause(t *testing.T) {
	cause := New("disk full")
	err := Storage(cause, "put book")

	assert.True(t, Is(err, ErrStorage))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "put book: disk full", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeStorage, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.code.HTTPStatus())
		})
	}
}

func TestValidationWithDetails(t *testing.T) {
	details := map[string]string{"title": "is required"}
	err := ValidationWithDetails("validation failed", details)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, details, err.Details)

	again := err.WithCause(New("boom"))
	assert.Equal(t, details, again.Details)
	assert.Contains(t, again.Error(), "boom")
}
