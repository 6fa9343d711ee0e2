package handlers

import (
	"errors"

	"libtrack/internal/core/domain"
	"libtrack/internal/core/services"
	"libtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LendingHandler handles borrow and return endpoints
type LendingHandler struct {
	lendingService *services.LendingService
}

// NewLendingHandler creates a new lending handler
func NewLendingHandler(lendingService *services.LendingService) *LendingHandler {
	return &LendingHandler{lendingService: lendingService}
}

// BorrowRequest represents the borrow request body. Either CopyID or ISBN
// selects the copy; when ISBN is used the oldest available copy is lent.
type BorrowRequest struct {
	CopyID     uint   `json:"copy_id"`
	ISBN       string `json:"isbn"`
	BorrowerID uint   `json:"borrower_id"`
}

// ReturnRequest represents the return request body
type ReturnRequest struct {
	CopyID uint `json:"copy_id"`
}

// Borrow lends a copy to a borrower
// @Summary Borrow a copy
// @Description Lend a specific copy (copy_id) or the oldest available copy of an ISBN (isbn)
// @Tags Lending
// @Accept json
// @Produce json
// @Param body body BorrowRequest true "Borrow data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /lending/borrow [post]
func (h *LendingHandler) Borrow(c *fiber.Ctx) error {
	var req BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BorrowerID == 0 {
		return response.BadRequest(c, "Borrower ID is required")
	}
	if req.CopyID == 0 && req.ISBN == "" {
		return response.BadRequest(c, "Either copy_id or isbn is required")
	}
	if req.CopyID != 0 && req.ISBN != "" {
		return response.BadRequest(c, "Provide copy_id or isbn, not both")
	}

	var err error
	if req.CopyID != 0 {
		borrowed, berr := h.lendingService.BorrowCopy(c.Context(), req.CopyID, req.BorrowerID)
		if berr == nil {
			return response.Success(c, "Copy borrowed successfully", borrowed.ToResponse())
		}
		err = berr
	} else {
		borrowed, berr := h.lendingService.BorrowByISBN(c.Context(), req.ISBN, req.BorrowerID)
		if berr == nil {
			return response.Success(c, "Copy borrowed successfully", borrowed.ToResponse())
		}
		err = berr
	}

	switch {
	case errors.Is(err, domain.ErrBorrowerNotFound):
		return response.NotFound(c, "Borrower not found")
	case errors.Is(err, domain.ErrCopyNotFound):
		return response.NotFound(c, "Copy not found")
	case errors.Is(err, domain.ErrNotAvailable):
		return response.Conflict(c, "Copy is already on loan")
	case errors.Is(err, domain.ErrNoAvailableCopy):
		return response.Conflict(c, "No available copy for this ISBN")
	case errors.Is(err, domain.ErrInvalidArgument):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Failed to borrow copy")
	}
}

// Return accepts a copy back
// @Summary Return a copy
// @Tags Lending
// @Accept json
// @Produce json
// @Param body body ReturnRequest true "Return data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /lending/return [post]
func (h *LendingHandler) Return(c *fiber.Ctx) error {
	var req ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CopyID == 0 {
		return response.BadRequest(c, "Copy ID is required")
	}

	copy, err := h.lendingService.Return(c.Context(), req.CopyID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCopyNotFound):
			return response.NotFound(c, "Copy not found")
		case errors.Is(err, domain.ErrNotOnLoan):
			return response.Conflict(c, "Copy is not currently on loan")
		default:
			return response.InternalServerError(c, "Failed to return copy")
		}
	}

	return response.Success(c, "Copy returned successfully", copy.ToResponse())
}
