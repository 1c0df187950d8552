package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("task", 7)
	assert.Equal(t, "NOT_FOUND: task with id 7 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(err))
}

func TestWrapPreservesCode(t *testing.T) {
	base := NotFound("column", 3)
	wrapped := Wrap(base, "load column")
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, wrapped.HTTPStatus)
	assert.True(t, errors.Is(wrapped, base))

	plain := Wrap(fmt.Errorf("boom"), "load column")
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestPredicatesThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", PersistenceFailure("update task", errors.New("disk full")))
	assert.True(t, IsPersistenceFailure(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, ErrCodePersistenceFailure, CodeOf(err))
	assert.Equal(t, "failed to update task", MessageOf(err))

	assert.True(t, IsBadRequest(ValidationError("title", "required")))
	assert.True(t, IsValidation(ValidationError("title", "required")))
	assert.True(t, IsConflict(Conflict("busy")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
	assert.Equal(t, ErrCodeInternalError, CodeOf(errors.New("plain")))
}
