package handler

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

func (h *AccountHandler) List(c *gin.Context) {
	RespondOK(c, h.accountService.Accounts())
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	acc, err := h.accountService.Account(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, acc)
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req AccountRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	acc, err := h.accountService.CreateAccount(req.toAccount())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, acc)
}

// Update replaces the account's editable fields. Opening balance and date in
// the body are ignored.
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req AccountRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	acc, err := h.accountService.UpdateAccount(id, req.toAccount())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, acc)
}

func (h *AccountHandler) SetOpeningValue(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req OpeningValueRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if req.Date.IsZero() {
		RespondBadRequest(c, "data_saldo_inicial is required")
		return
	}

	acc, err := h.accountService.SetOpeningValue(id, req.Amount, req.Date)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, acc)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	violation, err := h.accountService.DeleteAccount(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if violation != nil {
		h.logger.Info("Account deletion blocked", "account_id", id, "reason", violation.Reason)
		RespondViolation(c, violation)
		return
	}
	RespondNoContent(c)
}

// parseID reads a uuid path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, logger *slog.Logger, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid ID in path", "param", param, "value", raw, "error", err)
		RespondBadRequest(c, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, logger *slog.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
