package handlers

import (
	"errors"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/core/domain"
	"coop-passbook/internal/core/services"
	"coop-passbook/internal/pkg/pagination"
	"coop-passbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MaturityHandler handles maturity record endpoints
type MaturityHandler struct {
	maturityService *services.MaturityService
}

// NewMaturityHandler creates a new maturity handler
func NewMaturityHandler(maturityService *services.MaturityService) *MaturityHandler {
	return &MaturityHandler{maturityService: maturityService}
}

// Generate runs the maturity generation batch
func (h *MaturityHandler) Generate(c *fiber.Ctx) error {
	records, err := h.maturityService.GenerateRecords(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to generate maturity records")
	}

	out := make([]*models.MaturityRecordResponse, len(records))
	for i, r := range records {
		out[i] = r.ToResponse()
	}
	return response.Success(c, "Maturity records generated successfully", fiber.Map{
		"records": out,
	})
}

// List lists maturity records, optionally filtered by status
func (h *MaturityHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	records, total, err := h.maturityService.List(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list maturity records")
	}

	out := make([]*models.MaturityRecordResponse, len(records))
	for i, r := range records {
		out[i] = r.ToResponse()
	}
	return response.Success(c, "Maturity records retrieved successfully",
		pagination.NewResponse(out, params, total))
}

// Get gets a maturity record by ID
func (h *MaturityHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid record ID")
	}

	record, err := h.maturityService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return response.NotFound(c, "Maturity record not found")
		}
		return response.InternalServerError(c, "Failed to get maturity record")
	}

	return response.Success(c, "Maturity record retrieved successfully", fiber.Map{
		"record": record.ToResponse(),
	})
}

// OverrideRequest represents manual override input
type OverrideRequest struct {
	Enabled          bool     `json:"enabled"`
	AdjustedInterest *float64 `json:"adjusted_interest,omitempty"`
}

// Override enables or disables the admin interest override
func (h *MaturityHandler) Override(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid record ID")
	}

	var req OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.maturityService.SetManualOverride(c.Context(), id, req.Enabled, req.AdjustedInterest)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			return response.NotFound(c, "Maturity record not found")
		case errors.Is(err, domain.ErrInvalidAdjustment):
			return response.BadRequest(c, "Adjusted interest must not be negative")
		case errors.Is(err, domain.ErrAlreadyClaimed):
			return response.Conflict(c, "Maturity record already claimed")
		default:
			return response.InternalServerError(c, "Failed to update override")
		}
	}

	return response.Success(c, "Override updated successfully", fiber.Map{
		"record": record.ToResponse(),
	})
}

// Claim marks a matured record as claimed
func (h *MaturityHandler) Claim(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid record ID")
	}

	record, err := h.maturityService.Claim(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			return response.NotFound(c, "Maturity record not found")
		case errors.Is(err, domain.ErrNotMatured):
			return response.Conflict(c, "Maturity record has not matured")
		case errors.Is(err, domain.ErrAlreadyClaimed):
			return response.Conflict(c, "Maturity record already claimed")
		default:
			return response.InternalServerError(c, "Failed to claim maturity record")
		}
	}

	return response.Success(c, "Maturity record claimed successfully", fiber.Map{
		"record": record.ToResponse(),
	})
}
