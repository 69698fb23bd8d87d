package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripfares/internal/models"
)

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// EnvHandler exposes a masked configuration summary for troubleshooting.
func EnvHandler(summary func() map[string]interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.JSON(http.StatusOK, summary())
	}
}

// ErrorHandler renders every unhandled error as an ErrorResponse. Internal
// faults never leak their message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := models.ErrorResponse{
		Error:   "internal_error",
		Message: "An unexpected error occurred",
		Code:    http.StatusInternalServerError,
	}

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		resp.Code = he.Code
		resp.Error = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			resp.Message = msg
		}
	case isValidation(err):
		resp.Code = http.StatusBadRequest
		resp.Error = "validation_error"
		resp.Message = err.Error()
	default:
		slog.Error("request failed",
			"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(resp.Code)
	} else {
		writeErr = c.JSON(resp.Code, resp)
	}
	if writeErr != nil {
		slog.Error("write error response", "error", writeErr)
	}
}

func isValidation(err error) bool {
	var verr models.ValidationError
	return errors.As(err, &verr)
}
