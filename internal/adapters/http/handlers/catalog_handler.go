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

// CatalogHandler handles copy catalog endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// AddCopyRequest represents the add-copy request body
type AddCopyRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// UpdateCopyRequest represents the update-copy request body
type UpdateCopyRequest struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

func copyResponses(copies []*models.Copy) []*models.CopyResponse {
	out := make([]*models.CopyResponse, len(copies))
	for i, c := range copies {
		out[i] = c.ToResponse()
	}
	return out
}

// AddCopy registers a new physical copy
// @Summary Add a copy
// @Description Register one physical copy; metadata must match existing copies of the same ISBN
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body AddCopyRequest true "Copy data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /copies [post]
func (h *CatalogHandler) AddCopy(c *fiber.Ctx) error {
	var req AddCopyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	copy, err := h.catalogService.AddCopy(c.Context(), req.ISBN, req.Title, req.Author)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflictingMetadata):
			return response.Conflict(c, "ISBN already registered with different title or author")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to add copy")
		}
	}

	return response.Created(c, "Copy added successfully", copy.ToResponse())
}

// GetCopy gets one copy
// @Summary Get a copy
// @Tags Catalog
// @Produce json
// @Param id path int true "Copy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /copies/{id} [get]
func (h *CatalogHandler) GetCopy(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	copy, err := h.catalogService.GetCopy(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrCopyNotFound) {
			return response.NotFound(c, "Copy not found")
		}
		return response.InternalServerError(c, "Failed to get copy")
	}

	return response.Success(c, "Copy retrieved successfully", copy.ToResponse())
}

// ListCopies lists copies
// @Summary List copies
// @Description List copies with pagination; filter with available=true, borrowed=true, title= or author=
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param available query bool false "Only available copies"
// @Param borrowed query bool false "Only borrowed copies"
// @Param title query string false "Title substring"
// @Param author query string false "Author substring"
// @Success 200 {object} response.Response
// @Router /copies [get]
func (h *CatalogHandler) ListCopies(c *fiber.Ctx) error {
	if title := c.Query("title"); title != "" {
		copies, err := h.catalogService.SearchByTitle(c.Context(), title)
		if err != nil {
			return response.InternalServerError(c, "Failed to search copies")
		}
		return response.Success(c, "Copies retrieved successfully", copyResponses(copies))
	}
	if author := c.Query("author"); author != "" {
		copies, err := h.catalogService.SearchByAuthor(c.Context(), author)
		if err != nil {
			return response.InternalServerError(c, "Failed to search copies")
		}
		return response.Success(c, "Copies retrieved successfully", copyResponses(copies))
	}
	if c.QueryBool("available") {
		copies, err := h.catalogService.ListAvailable(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to list copies")
		}
		return response.Success(c, "Copies retrieved successfully", copyResponses(copies))
	}
	if c.QueryBool("borrowed") {
		copies, err := h.catalogService.ListBorrowed(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to list copies")
		}
		return response.Success(c, "Copies retrieved successfully", copyResponses(copies))
	}

	params := pagination.GetParams(c)
	copies, total, err := h.catalogService.ListCopies(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list copies")
	}

	return response.Success(c, "Copies retrieved successfully",
		pagination.NewResponse(copyResponses(copies), params, total))
}

// UpdateCopy edits a copy's metadata
// @Summary Update a copy
// @Description Edit title and/or author; conflicts with sibling copies are rejected without partial updates
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Copy ID"
// @Param body body UpdateCopyRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /copies/{id} [patch]
func (h *CatalogHandler) UpdateCopy(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	var req UpdateCopyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	copy, err := h.catalogService.UpdateCopy(c.Context(), uint(id), &services.UpdateCopyInput{
		Title:  req.Title,
		Author: req.Author,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCopyNotFound):
			return response.NotFound(c, "Copy not found")
		case errors.Is(err, domain.ErrConflictingMetadata):
			return response.Conflict(c, "Update would conflict with other copies of the same ISBN")
		case errors.Is(err, domain.ErrInvalidArgument):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to update copy")
		}
	}

	return response.Success(c, "Copy updated successfully", copy.ToResponse())
}

// RemoveCopy deletes a copy
// @Summary Remove a copy
// @Description Delete a copy; copies on loan cannot be removed
// @Tags Catalog
// @Produce json
// @Param id path int true "Copy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /copies/{id} [delete]
func (h *CatalogHandler) RemoveCopy(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	if err := h.catalogService.RemoveCopy(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrCopyNotFound):
			return response.NotFound(c, "Copy not found")
		case errors.Is(err, domain.ErrCopyOnLoan):
			return response.Conflict(c, "Copy is currently on loan")
		default:
			return response.InternalServerError(c, "Failed to remove copy")
		}
	}

	return response.Success(c, "Copy removed successfully", nil)
}

// CopiesByISBN lists every copy of an ISBN
// @Summary List copies of an ISBN
// @Tags Catalog
// @Produce json
// @Param isbn path string true "ISBN"
// @Param available query bool false "Only available copies"
// @Success 200 {object} response.Response
// @Router /isbn/{isbn}/copies [get]
func (h *CatalogHandler) CopiesByISBN(c *fiber.Ctx) error {
	isbn := c.Params("isbn")

	var copies []*models.Copy
	var err error
	if c.QueryBool("available") {
		copies, err = h.catalogService.FindAvailableByISBN(c.Context(), isbn)
	} else {
		copies, err = h.catalogService.FindByISBN(c.Context(), isbn)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list copies")
	}

	return response.Success(c, "Copies retrieved successfully", copyResponses(copies))
}

// ISBNAvailability reports copy counts for an ISBN
// @Summary ISBN availability
// @Description Total and available copy counts for an ISBN
// @Tags Catalog
// @Produce json
// @Param isbn path string true "ISBN"
// @Success 200 {object} response.Response
// @Router /isbn/{isbn}/availability [get]
func (h *CatalogHandler) ISBNAvailability(c *fiber.Ctx) error {
	isbn := c.Params("isbn")

	total, err := h.catalogService.CountByISBN(c.Context(), isbn)
	if err != nil {
		return response.InternalServerError(c, "Failed to count copies")
	}
	available, err := h.catalogService.CountAvailableByISBN(c.Context(), isbn)
	if err != nil {
		return response.InternalServerError(c, "Failed to count copies")
	}

	return response.Success(c, "Availability retrieved successfully", fiber.Map{
		"isbn":      domain.NormalizeISBN(isbn),
		"total":     total,
		"available": available,
	})
}
