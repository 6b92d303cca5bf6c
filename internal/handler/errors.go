package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// errorEnvelope is the body returned for every failed request:
// {statusCode, timestamp, path, message}.  Handlers raise
// echo.NewHTTPError at the point of detection and this shape is applied
// centrally by ErrorHandler.
type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    string `json:"message"`
}

// ErrorHandler is installed as the Echo HTTPErrorHandler.  It maps
// *echo.HTTPError to its own status, translates a raw MySQL
// duplicate-key failure (1062) reaching this point into a 409, and
// treats everything else as a 500.
func ErrorHandler(err error, c echo.Context) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(he.Code)
		}
	} else if strings.Contains(strings.ToLower(err.Error()), "1062") {
		status = http.StatusConflict
		message = "Duplicate key error"
	} else if c.Echo().Debug {
		message = err.Error()
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorEnvelope{
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request().URL.Path,
		Message:    message,
	})
}
