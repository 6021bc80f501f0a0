package middleware

import (
	"net/http"
	"strings"

	"github.com/courtside/booking-service/internal/dto"
	"github.com/courtside/booking-service/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"code","message"}. Server errors are
// logged with their cause and never leak it to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := dto.ErrorResponse{Code: "INTERNAL_ERROR", Message: "internal server error"}
	cause := err

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch m := he.Message.(type) {
		case dto.ErrorResponse:
			body = m
		case string:
			if status < http.StatusInternalServerError {
				body = dto.ErrorResponse{Code: codeForStatus(status), Message: m}
			}
		}
		if he.Internal != nil {
			cause = he.Internal
		}
	}

	if status >= http.StatusInternalServerError {
		l := logger.Component("http")
		l.Error().Err(cause).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Int("status", status).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

// codeForStatus derives an error code for errors raised by echo itself,
// e.g. 404 for an unknown route becomes NOT_FOUND.
func codeForStatus(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
