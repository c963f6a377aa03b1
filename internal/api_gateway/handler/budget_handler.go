package handler

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BudgetHandler handles HTTP requests for per-period category budgets
type BudgetHandler struct {
	budgetService service.BudgetService
	logger        *slog.Logger
}

func NewBudgetHandler(logger *slog.Logger, budgetService service.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// List returns the budgets of ?period=YYYY-MM, or all of them without it
func (h *BudgetHandler) List(c *gin.Context) {
	var period shared.Period
	if raw := c.Query("period"); raw != "" {
		parsed, err := shared.ParsePeriod(raw)
		if err != nil {
			RespondBadRequest(c, err.Error())
			return
		}
		period = parsed
	}
	RespondOK(c, h.budgetService.Budgets(period))
}

// Set creates the budget of a category and period, or replaces its amount
func (h *BudgetHandler) Set(c *gin.Context) {
	var req BudgetRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	period, err := shared.ParsePeriod(req.Period)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	b, err := h.budgetService.SetBudget(req.CategoryID, period, req.Amount)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, b)
}

func (h *BudgetHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	if err := h.budgetService.DeleteBudget(id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}
