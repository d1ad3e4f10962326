package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/intake/pkg/envelope"
)

// RequestTimeout bounds each request with a context deadline. The handler
// runs on the request goroutine and observes the deadline through
// c.Request().Context(); database and analyzer calls return once it
// passes. If the deadline has passed when the handler returns and nothing
// was written, a 504 envelope is written instead of the handler's result.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Response().Committed {
				return gatewayTimeout(c)
			}
			return err
		}
	}
}

func gatewayTimeout(c echo.Context) error {
	return c.JSON(http.StatusGatewayTimeout, envelope.Fail("Request processing exceeded the allowed time limit"))
}
