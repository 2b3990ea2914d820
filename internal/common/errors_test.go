// internal/common/errors_test.go
package common

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeMissingAuthorizationHeader))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeEntityNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeEntityAlreadyExists))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(CodeRefreshTokenRequired))
	assert.Equal(t, http.StatusNotAcceptable, HTTPStatus(CodePrereleaseNotAllowed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternalServerError))
}

func TestAsError(t *testing.T) {
	wrapped := AsError(assert.AnError)
	assert.Equal(t, CodeInternalServerError, wrapped.Code)

	original := NewError(CodeEntityNotFound, "not found")
	assert.Same(t, original, AsError(original))
}

func TestEnvelope(t *testing.T) {
	ok := Ok(map[string]string{"id": "1"})
	assert.True(t, ok.Success)

	fail := Fail(NewError(CodeEntityNotFound, "nope"))
	assert.False(t, fail.Success)
	assert.Len(t, fail.Errors, 1)
	assert.Equal(t, CodeEntityNotFound, fail.Errors[0].Code)
}
