package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runErrorHandler(t *testing.T, err error) (int, errorEnvelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/rooms/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(err, c)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestErrorHandlerEnvelope(t *testing.T) {
	code, env := runErrorHandler(t, echo.NewHTTPError(http.StatusNotFound, "Room not found"))

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "Room not found", env.Message)
	assert.Equal(t, "/rooms/5", env.Path)
	assert.NotEmpty(t, env.Timestamp)
}

func TestErrorHandlerDuplicateKey(t *testing.T) {
	raw := errors.New("Error 1062 (23000): Duplicate entry 'x' for key 'users.uq_users_email'")
	code, env := runErrorHandler(t, raw)

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Duplicate key error", env.Message)
}

func TestErrorHandlerUnknownError(t *testing.T) {
	code, env := runErrorHandler(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, code)
	// Internals never leak outside debug mode.
	assert.Equal(t, "Internal server error", env.Message)
}
