package intake

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

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/intake-forms")
	g.GET("", h.ListForms)
	g.POST("", h.CreateForm)
	g.GET("/:id", h.GetForm)
	g.PUT("/:id", h.UpdateForm)
	g.PATCH("/:id", h.UpdateForm)
	g.DELETE("/:id", h.DeleteForm)
	g.POST("/:id/process", h.ProcessForm)
}

func (h *Handler) ListForms(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) CreateForm(c echo.Context) error {
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	f, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope.WithMessage(f, "Intake form created successfully"))
}

func (h *Handler) GetForm(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	f, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(f))
}

func (h *Handler) UpdateForm(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	f, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.WithMessage(f, "Intake form updated successfully"))
}

func (h *Handler) DeleteForm(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.Message("Intake form deleted successfully"))
}

func (h *Handler) ProcessForm(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	f, err := h.svc.Process(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.WithMessage(f, "Intake form processed successfully"))
}
