package patient

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
	g := api.Group("/patients")
	g.GET("", h.ListPatients)
	g.POST("", h.CreatePatient)
	g.GET("/:id", h.GetPatient)
	g.PUT("/:id", h.UpdatePatient)
	g.PATCH("/:id", h.UpdatePatient)
	g.DELETE("/:id", h.DeletePatient)
	g.GET("/:id/intake-forms", h.ListIntakeForms)
	g.GET("/:id/appointments", h.ListAppointments)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, envelope.WithMessage(p, "Patient created successfully"))
}

func (h *Handler) GetPatient(c echo.Context) error {
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

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	var in Input
	if err := httpx.DecodeJSON(c, &in); err != nil {
		return err
	}
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.WithMessage(p, "Patient updated successfully"))
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.Message("Patient deleted successfully"))
}

func (h *Handler) ListIntakeForms(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	items, err := h.svc.IntakeForms(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}

func (h *Handler) ListAppointments(c echo.Context) error {
	id, err := httpx.ParamID(c, "id", ErrNotFound)
	if err != nil {
		return err
	}
	items, err := h.svc.Appointments(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope.OK(items))
}
