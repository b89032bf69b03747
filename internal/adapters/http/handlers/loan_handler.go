package handlers

import (
	"errors"

	"coop-passbook/internal/core/domain"
	"coop-passbook/internal/core/services"
	"coop-passbook/internal/pkg/pagination"
	"coop-passbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// RequestLoanRequest represents a loan request
type RequestLoanRequest struct {
	Amount         *float64 `json:"amount,omitempty"`
	InterestRate   float64  `json:"interest_rate"`
	DurationMonths int      `json:"duration_months"`
}

// Request creates a pending loan for a member
func (h *LoanHandler) Request(c *fiber.Ctx) error {
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req RequestLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.Request(c.Context(), &services.RequestLoanInput{
		MemberID:       memberID,
		Amount:         req.Amount,
		InterestRate:   req.InterestRate,
		DurationMonths: req.DurationMonths,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrDuplicateActiveLoan):
			return response.Conflict(c, "Member already has a pending or active loan")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Loan amount must be greater than 0")
		default:
			return response.InternalServerError(c, "Failed to request loan")
		}
	}

	return response.Created(c, "Loan requested successfully", fiber.Map{
		"loan": loan,
	})
}

// List lists loans, optionally filtered by status
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.List(c.Context(), &services.ListInput{
		Status: c.Query("status"),
		Offset: params.Offset,
		Limit:  params.Limit,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully",
		pagination.NewResponse(loans, params, total))
}

// ListByMember lists a member's loans
func (h *LoanHandler) ListByMember(c *fiber.Ctx) error {
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	loans, err := h.loanService.ListByMember(c.Context(), memberID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": loans,
	})
}

// Get gets a loan by ID
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan,
	})
}

// ApproveLoanRequest represents approve input
type ApproveLoanRequest struct {
	Amount *float64 `json:"amount,omitempty"`
}

// Approve activates a pending loan
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req ApproveLoanRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}

	loan, err := h.loanService.Approve(c.Context(), id, &services.ApproveInput{Amount: req.Amount})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Loan is not pending")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Loan amount must be set before approval")
		default:
			return response.InternalServerError(c, "Failed to approve loan")
		}
	}

	return response.Success(c, "Loan approved successfully", fiber.Map{
		"loan": loan,
	})
}

// RejectLoanRequest represents reject input
type RejectLoanRequest struct {
	Reason string `json:"reason"`
}

// Reject denies a pending loan
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req RejectLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "Reject reason is required")
	}

	loan, err := h.loanService.Reject(c.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Loan is not pending")
		default:
			return response.InternalServerError(c, "Failed to reject loan")
		}
	}

	return response.Success(c, "Loan rejected successfully", fiber.Map{
		"loan": loan,
	})
}
