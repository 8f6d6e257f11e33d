package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrors(t *testing.T) {
	var httpErr *HTTPError

	err := BadRequest("nope")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "nope", httpErr.Message)

	err = NotFound("missing")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	err = Unauthorized("who are you")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)

	err = ServiceUnavailable("down")
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}

func TestValidationf(t *testing.T) {
	err := Validationf("quantity", "must be positive, got %d", -3)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)
	assert.Contains(t, httpErr.Message, "quantity")
	assert.Contains(t, httpErr.Message, "must be positive, got -3")
}
