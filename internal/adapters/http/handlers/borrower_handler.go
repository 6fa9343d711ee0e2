package handlers

import (
	"errors"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/core/domain"
	"libtrack/internal/core/services"
	"libtrack/internal/pkg/pagination"
	"libtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowerHandler handles borrower registry endpoints
type BorrowerHandler struct {
	borrowerService *services.BorrowerService
	catalogService  *services.CatalogService
}

// NewBorrowerHandler creates a new borrower handler
func NewBorrowerHandler(borrowerService *services.BorrowerService, catalogService *services.CatalogService) *BorrowerHandler {
	return &BorrowerHandler{
		borrowerService: borrowerService,
		catalogService:  catalogService,
	}
}

// RegisterBorrowerRequest represents the register-borrower request body
type RegisterBorrowerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateBorrowerRequest represents the update-borrower request body
type UpdateBorrowerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func borrowerResponses(borrowers []*models.Borrower) []*models.BorrowerResponse {
	out := make([]*models.BorrowerResponse, len(borrowers))
	for i, b := range borrowers {
		out[i] = b.ToResponse()
	}
	return out
}

// Register registers a new borrower
// @Summary Register a borrower
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param body body RegisterBorrowerRequest true "Borrower data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /borrowers [post]
func (h *BorrowerHandler) Register(c *fiber.Ctx) error {
	var req RegisterBorrowerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	borrower, err := h.borrowerService.Register(c.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to register borrower")
		}
	}

	return response.Created(c, "Borrower registered successfully", borrower.ToResponse())
}

// GetBorrower gets one borrower
// @Summary Get a borrower
// @Tags Borrowers
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrowers/{id} [get]
func (h *BorrowerHandler) GetBorrower(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	borrower, err := h.borrowerService.GetBorrower(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return response.NotFound(c, "Borrower not found")
		}
		return response.InternalServerError(c, "Failed to get borrower")
	}

	return response.Success(c, "Borrower retrieved successfully", borrower.ToResponse())
}

// ListBorrowers lists borrowers
// @Summary List borrowers
// @Description List borrowers with pagination; filter with name= or email=
// @Tags Borrowers
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param name query string false "Name substring"
// @Param email query string false "Exact email"
// @Success 200 {object} response.Response
// @Router /borrowers [get]
func (h *BorrowerHandler) ListBorrowers(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		borrower, err := h.borrowerService.FindByEmail(c.Context(), email)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrBorrowerNotFound):
				return response.NotFound(c, "Borrower not found")
			case errors.Is(err, domain.ErrInvalidArgument):
				return response.BadRequest(c, err.Error())
			default:
				return response.InternalServerError(c, "Failed to find borrower")
			}
		}
		return response.Success(c, "Borrower retrieved successfully", borrower.ToResponse())
	}

	if name := c.Query("name"); name != "" {
		borrowers, err := h.borrowerService.SearchByName(c.Context(), name)
		if err != nil {
			return response.InternalServerError(c, "Failed to search borrowers")
		}
		return response.Success(c, "Borrowers retrieved successfully", borrowerResponses(borrowers))
	}

	params := pagination.GetParams(c)
	borrowers, total, err := h.borrowerService.ListBorrowers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrowers")
	}

	return response.Success(c, "Borrowers retrieved successfully",
		pagination.NewResponse(borrowerResponses(borrowers), params, total))
}

// UpdateBorrower edits a borrower
// @Summary Update a borrower
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param id path int true "Borrower ID"
// @Param body body UpdateBorrowerRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /borrowers/{id} [patch]
func (h *BorrowerHandler) UpdateBorrower(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	var req UpdateBorrowerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	borrower, err := h.borrowerService.Update(c.Context(), uint(id), &services.UpdateBorrowerInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update borrower")
		}
	}

	return response.Success(c, "Borrower updated successfully", borrower.ToResponse())
}

// DeleteBorrower removes a borrower
// @Summary Delete a borrower
// @Description Delete a borrower; borrowers still holding copies cannot be removed
// @Tags Borrowers
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /borrowers/{id} [delete]
func (h *BorrowerHandler) DeleteBorrower(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	if err := h.borrowerService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, domain.ErrHasActiveLoans):
			return response.Conflict(c, "Borrower still holds borrowed copies")
		default:
			return response.InternalServerError(c, "Failed to delete borrower")
		}
	}

	return response.Success(c, "Borrower deleted successfully", nil)
}

// HeldCopies lists copies a borrower currently holds
// @Summary Copies held by a borrower
// @Tags Borrowers
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrowers/{id}/copies [get]
func (h *BorrowerHandler) HeldCopies(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	if _, err := h.borrowerService.GetBorrower(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return response.NotFound(c, "Borrower not found")
		}
		return response.InternalServerError(c, "Failed to get borrower")
	}

	copies, err := h.catalogService.CopiesByBorrower(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to list held copies")
	}

	return response.Success(c, "Held copies retrieved successfully", copyResponses(copies))
}
