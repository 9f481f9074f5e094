package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorHidesInternalCause(t *testing.T) {
	appErr := FromError(fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
}

func TestClonedSentinelMatchesIs(t *testing.T) {
	err := fmt.Errorf("submit: %w", Clone(ErrForbidden, "not enrolled in group"))
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrAlreadyEvaluated))
}

func TestWithDetailsKeepsEveryField(t *testing.T) {
	err := WithDetails(ErrValidation, []FieldError{
		{Field: "overall_rating", Message: "must be between 1 and 5"},
		{Field: "answers[0].rating", Message: "must be between 1 and 5"},
	})
	fields, ok := err.Details.([]FieldError)
	assert.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Nil(t, ErrValidation.Details)
}
