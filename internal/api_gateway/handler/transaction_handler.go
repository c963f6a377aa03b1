package handler

import (
	"log/slog"
	"strconv"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for transactions, transfers and
// recurring series
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

func (h *TransactionHandler) List(c *gin.Context) {
	RespondOK(c, h.transactionService.Transactions())
}

// GetByID retrieves a single transaction, returning 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	tx, err := h.transactionService.Transaction(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, tx)
}

// Create records a transaction after checking its account, category and card exist
func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.transactionService.CreateTransaction(req.toTransaction())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, tx)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req TransactionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.transactionService.UpdateTransaction(id, req.toTransaction())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, tx)
}

// Delete removes a transaction and, for transfers, its counterpart
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	var req TransferRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if req.Date.IsZero() {
		RespondBadRequest(c, "data is required")
		return
	}

	out, in, err := h.transactionService.CreateTransfer(req.From, req.To, req.Amount, req.Date, req.Description)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, TransferResponse{Out: out, In: in})
}

// CreateRecurring expands the template into one transaction per month,
// starting at the template date
func (h *TransactionHandler) CreateRecurring(c *gin.Context) {
	var req RecurringRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	series, err := h.transactionService.CreateRecurring(req.toTransaction(), req.Occurrences)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, series)
}

// DeleteRecurrence removes a recurring group. With ?forecast_only=true the
// realized occurrences are kept.
func (h *TransactionHandler) DeleteRecurrence(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	forecastOnly := false
	if raw := c.Query("forecast_only"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			RespondBadRequest(c, "forecast_only must be a boolean")
			return
		}
		forecastOnly = parsed
	}

	removed := h.transactionService.DeleteRecurrence(id, forecastOnly)
	RespondOK(c, RecurrenceDeletedResponse{Removed: removed})
}
