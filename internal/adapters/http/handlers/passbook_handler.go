package handlers

import (
	"errors"
	"log"
	"time"

	"coop-passbook/internal/core/domain"
	"coop-passbook/internal/core/services"
	"coop-passbook/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PassbookHandler handles passbook entry endpoints
type PassbookHandler struct {
	ledgerService *services.LedgerService
}

// NewPassbookHandler creates a new passbook handler
func NewPassbookHandler(ledgerService *services.LedgerService) *PassbookHandler {
	return &PassbookHandler{ledgerService: ledgerService}
}

// Amount fields come in as strings: legacy clients send partially
// populated or non-numeric values, which degrade to zero with a
// data-quality warning instead of failing the request.
func parseAmountField(field, raw string) float64 {
	d, ok := domain.ParseAmount(raw)
	if !ok {
		log.Printf("⚠️ passbook: malformed %s %q, treating as 0", field, raw)
	}
	f, _ := d.Float64()
	return f
}

func parseEntryDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

// RecordDepositRequest represents a deposit entry request
type RecordDepositRequest struct {
	DepositAmount string `json:"deposit_amount"`
	InterestAuto  string `json:"interest_auto,omitempty"`
	FineAuto      string `json:"fine_auto,omitempty"`
	Date          string `json:"date,omitempty"`
	PaymentMode   string `json:"payment_mode"`
	Note          string `json:"note,omitempty"`
}

// RecordDeposit posts a deposit entry for a member
func (h *PassbookHandler) RecordDeposit(c *fiber.Ctx) error {
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req RecordDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date, use YYYY-MM-DD")
	}

	input := &services.RecordDepositInput{
		MemberID:     memberID,
		Amount:       parseAmountField("deposit_amount", req.DepositAmount),
		InterestAuto: parseAmountField("interest_auto", req.InterestAuto),
		FineAuto:     parseAmountField("fine_auto", req.FineAuto),
		Date:         date,
		PaymentMode:  req.PaymentMode,
		Note:         req.Note,
	}

	entry, err := h.ledgerService.RecordDeposit(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Deposit amount must be greater than 0")
		default:
			return response.InternalServerError(c, "Failed to record deposit")
		}
	}

	return response.Created(c, "Deposit recorded successfully", fiber.Map{
		"entry": entry,
	})
}

// RecordInstallmentRequest represents an installment entry request
type RecordInstallmentRequest struct {
	LoanID          uint   `json:"loan_id"`
	LoanInstallment string `json:"loan_installment"`
	Date            string `json:"date,omitempty"`
	PaymentMode     string `json:"payment_mode"`
	Note            string `json:"note,omitempty"`
}

// RecordInstallment posts a loan installment entry for a member
func (h *PassbookHandler) RecordInstallment(c *fiber.Ctx) error {
	memberID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid member ID")
	}

	var req RecordInstallmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.LoanID == 0 {
		return response.BadRequest(c, "Loan ID is required")
	}

	date, err := parseEntryDate(req.Date)
	if err != nil {
		return response.BadRequest(c, "Invalid date, use YYYY-MM-DD")
	}

	input := &services.RecordInstallmentInput{
		MemberID:    memberID,
		LoanID:      req.LoanID,
		Amount:      parseAmountField("loan_installment", req.LoanInstallment),
		Date:        date,
		PaymentMode: req.PaymentMode,
		Note:        req.Note,
	}

	entry, err := h.ledgerService.RecordInstallment(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.BadRequest(c, "Installment amount must be greater than 0")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Loan is not active")
		default:
			return response.InternalServerError(c, "Failed to record installment")
		}
	}

	return response.Created(c, "Installment recorded successfully", fiber.Map{
		"entry": entry,
	})
}

// GetEntry gets a single passbook entry
func (h *PassbookHandler) GetEntry(c *fiber.Ctx) error {
	entryID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid entry ID")
	}

	entry, err := h.ledgerService.GetEntry(c.Context(), entryID)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return response.NotFound(c, "Entry not found")
		}
		return response.InternalServerError(c, "Failed to get entry")
	}

	return response.Success(c, "Entry retrieved successfully", fiber.Map{
		"entry": entry,
	})
}

// DeleteEntry reverses and removes a passbook entry
func (h *PassbookHandler) DeleteEntry(c *fiber.Ctx) error {
	entryID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid entry ID")
	}

	if err := h.ledgerService.DeleteEntry(c.Context(), entryID); err != nil {
		switch {
		case errors.Is(err, domain.ErrEntryNotFound):
			return response.NotFound(c, "Entry not found")
		case errors.Is(err, domain.ErrReconciliationConflict):
			return response.Conflict(c, "Entry was modified concurrently")
		default:
			return response.InternalServerError(c, "Failed to delete entry")
		}
	}

	return response.Success(c, "Entry deleted successfully", nil)
}
