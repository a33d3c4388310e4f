package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NotFound("search not found")
		assert.Equal(t, "search not found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, ErrCodeTransient, "poll run status")
		assert.Equal(t, "poll run status: connection refused", err.Error())
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeStorage, "insert leads")

	require.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &appErr)
	assert.Equal(t, ErrCodeStorage, appErr.Code)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should be nil"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "should be %s", "nil"))
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"conflict", Conflict("x"), IsConflict},
		{"validation", Validation("x"), IsValidation},
		{"credential", Credential("x"), IsCredential},
		{"executor", Executor("x"), IsExecutor},
		{"timeout", Timeout("x"), IsTimeout},
		{"transient", Wrap(errors.New("x"), ErrCodeTransient, "x"), IsTransient},
		{"storage", Wrap(errors.New("x"), ErrCodeStorage, "x"), IsStorage},
		{"internal", Internal("x"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", Executor("run rejected"))
	assert.True(t, IsExecutor(err))
	assert.False(t, IsValidation(err))
}

func TestGetCodeAndField(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, GetCode(ValidationField("filters", "at least one filter required")))
	assert.Equal(t, "filters", GetField(ValidationField("filters", "at least one filter required")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}
