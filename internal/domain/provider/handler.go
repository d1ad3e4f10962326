package provider

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/intake/internal/platform/httpx"
	"github.com/carepoint/intake/pkg/envelope"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the read-only provider endpoints. Providers are
// managed through the seed command.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/providers", h.ListProviders)
	api.GET("/providers/:id", h.GetProvider)
}

func (h *Handler) ListProviders(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) GetProvider(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}
