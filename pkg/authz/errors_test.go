package authz

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    *AuthzError
		code   string
		status int
	}{
		{ErrNotFound("pid-1"), ErrCodeNotFound, http.StatusNotFound},
		{ErrForbidden(), ErrCodeForbidden, http.StatusForbidden},
		{ErrFilterConflict(), ErrCodeFilterConflict, http.StatusBadRequest},
		{ErrBadFilter("nope"), ErrCodeBadFilter, http.StatusBadRequest},
		{ErrUnknownOperation("x"), ErrCodeUnknownAction, http.StatusInternalServerError},
		{ErrUnavailable(nil), ErrCodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.HTTPStatus())
		assert.Contains(t, tt.err.Error(), tt.code)
	}
}

func TestForbiddenMessageIsUniform(t *testing.T) {
	t.Parallel()

	// The message must not leak which tier was closest to matching.
	assert.Equal(t, ErrForbidden().Error(), ErrForbidden().Error())
	assert.NotContains(t, ErrForbidden().Message, "owner")
	assert.NotContains(t, ErrForbidden().Message, "group")
}

func TestErrorCodeExtraction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeNotFound, ErrorCode(ErrNotFound("x")))
	assert.Equal(t, ErrCodeNotFound, ErrorCode(fmt.Errorf("wrapped: %w", ErrNotFound("x"))))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))
	assert.Equal(t, "", ErrorCode(nil))

	assert.True(t, IsAuthzError(ErrForbidden()))
	assert.False(t, IsAuthzError(errors.New("plain")))
}

func TestUnavailableWrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("driver timeout")
	err := ErrUnavailable(cause)
	assert.True(t, errors.Is(err, cause))
}
