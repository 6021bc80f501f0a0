package handler

import (
	"net/http"
	"strconv"

	"github.com/courtside/booking-service/internal/dto"
	"github.com/courtside/booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves the resource listings and the admin endpoints that
// create resources and maintain coach schedules.
type CatalogHandler struct {
	catalog service.CatalogService
	coaches service.CoachService
}

func NewCatalogHandler(catalog service.CatalogService, coaches service.CoachService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, coaches: coaches}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/courts", h.ListCourts)
	api.GET("/courts/:id", h.GetCourt)
	api.GET("/equipment", h.ListEquipment)
	api.GET("/coaches", h.ListCoaches)

	admin := api.Group("/admin")
	admin.POST("/courts", h.CreateCourt)
	admin.POST("/equipment", h.CreateEquipment)
	admin.POST("/coaches", h.CreateCoach)
	admin.POST("/coaches/:id/availability", h.SetCoachAvailability)
	admin.GET("/coaches/:id/availability", h.GetCoachAvailability)
	admin.POST("/pricing-rules", h.CreatePricingRule)
	admin.GET("/pricing-rules", h.ListPricingRules)
}

func (h *CatalogHandler) ListCourts(c echo.Context) error {
	courts, err := h.catalog.ListCourts(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, courts)
}

func (h *CatalogHandler) GetCourt(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(service.KindInvalidInput, "invalid court id")
	}

	court, err := h.catalog.GetCourt(c.Request().Context(), uint(id))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, court)
}

func (h *CatalogHandler) ListEquipment(c echo.Context) error {
	equipment, err := h.catalog.ListEquipment(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, equipment)
}

func (h *CatalogHandler) ListCoaches(c echo.Context) error {
	coaches, err := h.catalog.ListCoaches(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, coaches)
}

func (h *CatalogHandler) CreateCourt(c echo.Context) error {
	var req dto.CreateCourtRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(service.KindInvalidInput, "invalid request body")
	}

	court := req.ToModel()
	if err := h.catalog.CreateCourt(c.Request().Context(), court); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, court)
}

func (h *CatalogHandler) CreateEquipment(c echo.Context) error {
	var req dto.CreateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(service.KindInvalidInput, "invalid request body")
	}

	equipment := req.ToModel()
	if err := h.catalog.CreateEquipment(c.Request().Context(), equipment); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, equipment)
}

func (h *CatalogHandler) CreateCoach(c echo.Context) error {
	var req dto.CreateCoachRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(service.KindInvalidInput, "invalid request body")
	}

	coach := req.ToModel()
	if err := h.catalog.CreateCoach(c.Request().Context(), coach); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, coach)
}

func (h *CatalogHandler) CreatePricingRule(c echo.Context) error {
	var req dto.CreatePricingRuleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(service.KindInvalidInput, "invalid request body")
	}

	rule := req.ToModel()
	if err := h.catalog.CreatePricingRule(c.Request().Context(), rule); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, rule)
}

func (h *CatalogHandler) ListPricingRules(c echo.Context) error {
	rules, err := h.catalog.ListPricingRules(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, rules)
}

// SetCoachAvailability replaces the coach's weekly schedule. A body whose
// slot fields are not numbers fails binding and is reported as INVALID_SLOT.
func (h *CatalogHandler) SetCoachAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(service.KindInvalidInput, "invalid coach id")
	}

	var req dto.SetCoachAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(service.KindInvalidSlot, "each slot must have numeric day_of_week, start_hour and end_hour")
	}

	slots, err := h.coaches.SetAvailability(c.Request().Context(), uint(id), req.ToInput())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCoachAvailabilityResponse(uint(id), slots))
}

func (h *CatalogHandler) GetCoachAvailability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(service.KindInvalidInput, "invalid coach id")
	}

	slots, err := h.coaches.GetAvailability(c.Request().Context(), uint(id))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToCoachAvailabilityResponse(uint(id), slots))
}
