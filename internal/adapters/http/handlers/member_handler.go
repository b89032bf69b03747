package handlers

import (
	"errors"
	"strconv"
	"time"

	"coop-passbook/internal/core/domain"
	"coop-passbook/internal/core/services"
	"coop-passbook/internal/pkg/pagination"
	"coop-passbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member endpoints
type MemberHandler struct {
	memberService *services.MemberService
	ledgerService *services.LedgerService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, ledgerService *services.LedgerService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		ledgerService: ledgerService,
	}
}

// paramID parses a :id route parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// clientIDFromToken reads the tenant ID the auth middleware stored
func clientIDFromToken(c *fiber.Ctx) uint {
	clientID, _ := c.Locals("clientID").(uint)
	return clientID
}

// CreateMemberRequest represents enrollment request
type CreateMemberRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	JoinDate string `json:"join_date,omitempty"`
}

// Create enrolls a new member
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Member name is required")
	}

	input := &services.CreateMemberInput{
		ClientID: clientIDFromToken(c),
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if req.JoinDate != "" {
		joinDate, err := time.Parse("2006-01-02", req.JoinDate)
		if err != nil {
			return response.BadRequest(c, "Invalid join date, use YYYY-MM-DD")
		}
		input.JoinDate = joinDate
	}

	member, err := h.memberService.Create(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create member")
	}

	return response.Created(c, "Member created successfully", fiber.Map{
		"member": member,
	})
}

// List lists members of the caller's client
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.List(c.Context(), clientIDFromToken(c), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully",
		pagination.NewResponse(members, params, total))
}

// Get gets a member by ID
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	member, err := h.memberService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": member,
	})
}

// Delete removes a member without open loans
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrMemberHasOpenLoan):
			return response.Conflict(c, "Member has a pending or active loan")
		default:
			return response.InternalServerError(c, "Failed to delete member")
		}
	}

	return response.Success(c, "Member deleted successfully", nil)
}

// Balance returns the member's current balance and deposit total.
// An optional as_of query param (YYYY-MM-DD) returns the balance at
// that accounting date instead.
func (h *MemberHandler) Balance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}
	if _, err := h.memberService.Get(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	if v := c.Query("as_of"); v != "" {
		asOf, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid as_of date, use YYYY-MM-DD")
		}
		balance, err := h.ledgerService.BalanceAsOf(c.Context(), id, asOf)
		if err != nil {
			return response.InternalServerError(c, "Failed to compute balance")
		}
		balanceAt, _ := balance.Float64()
		return response.Success(c, "Balance computed successfully", fiber.Map{
			"as_of":   v,
			"balance": balanceAt,
		})
	}

	summary, err := h.ledgerService.ComputeBalance(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute balance")
	}

	currentBalance, _ := summary.CurrentBalance.Float64()
	totalDeposits, _ := summary.TotalDeposits.Float64()
	return response.Success(c, "Balance computed successfully", fiber.Map{
		"current_balance": currentBalance,
		"total_deposits":  totalDeposits,
	})
}

// Statement returns the member's passbook lines with running balance.
// Optional from/to query params (YYYY-MM-DD) bound the accounting dates.
func (h *MemberHandler) Statement(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}
	if _, err := h.memberService.Get(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return response.NotFound(c, "Member not found")
		}
		return response.InternalServerError(c, "Failed to get member")
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid from date, use YYYY-MM-DD")
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid to date, use YYYY-MM-DD")
		}
		to = &t
	}

	lines, err := h.ledgerService.Statement(c.Context(), id, from, to)
	if err != nil {
		return response.InternalServerError(c, "Failed to build statement")
	}

	return response.Success(c, "Statement retrieved successfully", fiber.Map{
		"lines": lines,
	})
}
