package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleErrors(t *testing.T) {
	h := NewHandler(nil)

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
		t.Helper()
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	t.Run("HTTP errors keep their status code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleErrors(rec, utils.NotFound("asset not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "asset not found", decode(t, rec)["error"])
	})

	t.Run("validation errors map to 422", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleErrors(rec, utils.Validationf("quantity", "must be positive"))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("deadline exceeded maps to 504", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleErrors(rec, context.DeadlineExceeded)

		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("plain errors map to 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleErrors(rec, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "boom", decode(t, rec)["error"])
	})
}

func TestHealthcheck(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/alive", nil)

	Healthcheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
