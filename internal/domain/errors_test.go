package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewInvalidInputError("venue_id is required", "")
	assert.Equal(t, "INVALID_INPUT: venue_id is required", err.Error())

	err = NewInvalidInputError("invalid rule status", `weekend: "paused"`)
	assert.Equal(t, `INVALID_INPUT: invalid rule status (weekend: "paused")`, err.Error())
}

func TestGetDomainError_Wrapped(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("quote: %w", fmt.Errorf("%w: %w", NewInternalError("failed to load pricing rules"), cause))

	assert.True(t, IsDomainError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeInternal))
	assert.False(t, HasCode(wrapped, ErrCodeInvalidInput))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to load pricing rules", GetDomainError(wrapped).Message)
}

func TestGetDomainError_PlainError(t *testing.T) {
	err := errors.New("boom")

	assert.False(t, IsDomainError(err))
	assert.Nil(t, GetDomainError(err))
	assert.False(t, HasCode(nil, ErrCodeInternal))
}
