// internal/apperrors/apperrors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindConflict, KindOf(Conflict("taken")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(Internal("boom", errors.New("cause"))))
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := NotFound("order not found")
	wrapped := fmt.Errorf("handling webhook: %w", inner)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("database error", cause)
	assert.Contains(t, err.Error(), "database error")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestValidationCarriesDetails(t *testing.T) {
	details := []string{"email is required"}
	err := Validation("validation failed", details)
	assert.Equal(t, details, DetailsOf(err))
	assert.Nil(t, DetailsOf(errors.New("plain")))
}

func TestKindCodes(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", KindNotFound.String())
	assert.Equal(t, "VALIDATION_ERROR", KindValidation.String())
	assert.Equal(t, "INTERNAL_ERROR", KindInternal.String())
}
