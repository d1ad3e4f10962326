package appointment

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
	g := api.Group("/appointments")
	g.GET("", h.ListAppointments)
	g.POST("", h.CreateAppointment)
	g.GET("/:id", h.GetAppointment)
	g.PUT("/:id", h.UpdateAppointment)
	g.PATCH("/:id", h.UpdateAppointment)
	g.DELETE("/:id", h.DeleteAppointment)
}

// ListAppointments supports ?scope=upcoming|completed and ?status=.
func (h *Handler) ListAppointments(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), c.QueryParam("scope"), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope.WithMessage(a, "Appointment created successfully"))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.WithMessage(a, "Appointment updated successfully"))
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.Message("Appointment deleted successfully"))
}
