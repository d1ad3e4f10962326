package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/intake/internal/platform/apperr"
	"github.com/carepoint/intake/internal/platform/validation"
	"github.com/carepoint/intake/pkg/envelope"
)

// ErrorHandler renders every error returned by a handler as an envelope:
//
//	validation.Errors -> 422 "Validation failed" with field messages
//	*apperr.Error     -> status for its type with its message
//	*echo.HTTPError   -> its status (unknown routes, bad methods, 413)
//	anything else     -> 500 "Internal server error"
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func render(err error) (int, envelope.Response) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return http.StatusUnprocessableEntity, envelope.ValidationFailed(verrs)
	}

	var aerr *apperr.Error
	if errors.As(err, &aerr) {
		status := apperr.HTTPStatus(aerr.Type)
		msg := aerr.Message
		if status == http.StatusInternalServerError {
			msg = "Internal server error"
		}
		return status, envelope.Fail(msg)
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		msg := http.StatusText(herr.Code)
		if s, ok := herr.Message.(string); ok && s != "" {
			msg = s
		}
		if herr.Code >= http.StatusInternalServerError {
			msg = "Internal server error"
		}
		return herr.Code, envelope.Fail(msg)
	}

	return http.StatusInternalServerError, envelope.Fail("Internal server error")
}
