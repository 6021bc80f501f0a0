package handler

import (
	"net/http"

	"github.com/courtside/booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

type AvailabilityHandler struct {
	svc service.AvailabilityService
}

func NewAvailabilityHandler(svc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/availability", h.CheckAvailability)
}

// CheckAvailability expects start_time and end_time as RFC 3339 query parameters.
func (h *AvailabilityHandler) CheckAvailability(c echo.Context) error {
	w, err := service.ParseWindow(c.QueryParam("start_time"), c.QueryParam("end_time"))
	if err != nil {
		return toHTTPError(err)
	}

	snapshot, err := h.svc.CheckAvailability(c.Request().Context(), w)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, snapshot)
}
