// Package httpx holds request helpers shared by the domain handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carepoint/intake/internal/platform/apperr"
)

// DecodeJSON decodes the request body into dst. An empty body decodes as {},
// so missing fields surface as validation errors rather than a 400.
func DecodeJSON(c echo.Context, dst interface{}) error {
	body := c.Request().Body
	if body == nil {
		return nil
	}
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr
	}
	return apperr.BadRequest("Malformed JSON body", err)
}

// ParamID parses the named path parameter as a UUID. A value that is not a
// UUID cannot name a record, so it yields notFound.
func ParamID(c echo.Context, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
