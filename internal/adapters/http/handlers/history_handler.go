package handlers

import (
	"errors"
	"time"

	"libtrack/internal/adapters/persistence/models"
	"libtrack/internal/core/domain"
	"libtrack/internal/core/services"
	"libtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler handles ledger query endpoints
type HistoryHandler struct {
	historyService *services.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyService *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) entryResponses(entries []*models.LedgerEntry) []*models.LedgerEntryResponse {
	out := make([]*models.LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = h.historyService.EntryResponse(e)
	}
	return out
}

// parseDateRange reads optional from/to query params (RFC3339 or YYYY-MM-DD)
func parseDateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	parse := func(value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	from, err := parse(c.Query("from"))
	if err != nil {
		return nil, nil, err
	}
	to, err := parse(c.Query("to"))
	if err != nil {
		return nil, nil, err
	}
	if (from == nil) != (to == nil) {
		return nil, nil, errors.New("from and to must be supplied together")
	}
	return from, to, nil
}

// CopyHistory lists a copy's ledger entries
// @Summary Copy history
// @Description Ledger entries for a copy, most recent first; optional from/to window
// @Tags History
// @Produce json
// @Param id path int true "Copy ID"
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end"
// @Success 200 {object} response.Response
// @Router /history/copies/{id} [get]
func (h *HistoryHandler) CopyHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	entries, err := h.historyService.HistoryForCopy(c.Context(), uint(id), from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to get copy history")
	}

	return response.Success(c, "History retrieved successfully", h.entryResponses(entries))
}

// BorrowerHistory lists a borrower's ledger entries
// @Summary Borrower history
// @Tags History
// @Produce json
// @Param id path int true "Borrower ID"
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end"
// @Success 200 {object} response.Response
// @Router /history/borrowers/{id} [get]
func (h *HistoryHandler) BorrowerHistory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	entries, err := h.historyService.HistoryForBorrower(c.Context(), uint(id), from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to get borrower history")
	}

	return response.Success(c, "History retrieved successfully", h.entryResponses(entries))
}

// HistoryInRange lists all ledger entries within a window
// @Summary Ledger window
// @Tags History
// @Produce json
// @Param from query string true "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string true "Window end"
// @Success 200 {object} response.Response
// @Router /history [get]
func (h *HistoryHandler) HistoryInRange(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if from == nil || to == nil {
		return response.BadRequest(c, "from and to are required")
	}

	entries, err := h.historyService.HistoryInRange(c.Context(), *from, *to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to get history")
	}

	return response.Success(c, "History retrieved successfully", h.entryResponses(entries))
}

// CurrentLoans lists a borrower's current loans
// @Summary Current loans for a borrower
// @Tags History
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Router /borrowers/{id}/loans [get]
func (h *HistoryHandler) CurrentLoans(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	entries, err := h.historyService.CurrentLoans(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to get current loans")
	}

	return response.Success(c, "Current loans retrieved successfully", h.entryResponses(entries))
}

// BorrowerOverdue lists a borrower's overdue loans
// @Summary Overdue loans for a borrower
// @Tags History
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Router /borrowers/{id}/overdue [get]
func (h *HistoryHandler) BorrowerOverdue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	entries, err := h.historyService.OverdueLoans(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to get overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", h.entryResponses(entries))
}

// AllOverdue lists every overdue loan
// @Summary All overdue loans
// @Tags History
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /overdue [get]
func (h *HistoryHandler) AllOverdue(c *fiber.Ctx) error {
	entries, err := h.historyService.AllOverdue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get overdue loans")
	}

	return response.Success(c, "Overdue loans retrieved successfully", h.entryResponses(entries))
}

// PopularCopies ranks copies by borrow count
// @Summary Most popular copies
// @Tags History
// @Produce json
// @Param limit query int false "Ranking size" default(10)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /stats/popular-copies [get]
func (h *HistoryHandler) PopularCopies(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	ranking, err := h.historyService.MostPopularCopies(c.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to rank copies")
	}

	return response.Success(c, "Ranking retrieved successfully", ranking)
}

// ActiveBorrowers ranks borrowers by borrow count
// @Summary Most active borrowers
// @Tags History
// @Produce json
// @Param limit query int false "Ranking size" default(10)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /stats/active-borrowers [get]
func (h *HistoryHandler) ActiveBorrowers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	ranking, err := h.historyService.MostActiveBorrowers(c.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to rank borrowers")
	}

	return response.Success(c, "Ranking retrieved successfully", ranking)
}

// BorrowerStats summarizes one borrower's lending record
// @Summary Borrower statistics
// @Tags History
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Router /stats/borrowers/{id} [get]
func (h *HistoryHandler) BorrowerStats(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	stats, err := h.historyService.BorrowerStatistics(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to get borrower statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// CopyStats reports a copy's borrow count and latest entry
// @Summary Copy statistics
// @Tags History
// @Produce json
// @Param id path int true "Copy ID"
// @Success 200 {object} response.Response
// @Router /stats/copies/{id} [get]
func (h *HistoryHandler) CopyStats(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid copy ID")
	}

	total, err := h.historyService.TotalBorrowingsForCopy(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to get copy statistics")
	}

	var latest *models.LedgerEntryResponse
	entry, err := h.historyService.MostRecentEntryForCopy(c.Context(), uint(id))
	if err == nil {
		latest = h.historyService.EntryResponse(entry)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return response.InternalServerError(c, "Failed to get copy statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", fiber.Map{
		"copy_id":          uint(id),
		"total_borrowings": total,
		"latest_entry":     latest,
	})
}
