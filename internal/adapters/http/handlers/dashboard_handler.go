package handlers

import (
	"coop-passbook/internal/core/services"
	"coop-passbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary returns society-wide aggregates for the caller's client
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetSummary(c.Context(), clientIDFromToken(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to load dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
