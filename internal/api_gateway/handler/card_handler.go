package handler

import (
	"log/slog"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CardHandler handles HTTP requests for cards, purchases and installments
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

func NewCardHandler(logger *slog.Logger, cardService service.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		logger:      logger,
	}
}

func (h *CardHandler) List(c *gin.Context) {
	RespondOK(c, h.cardService.Cards())
}

func (h *CardHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	crd, err := h.cardService.Card(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, crd)
}

func (h *CardHandler) Create(c *gin.Context) {
	var req CardRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	crd, err := h.cardService.CreateCard(req.toCard())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, crd)
}

func (h *CardHandler) Update(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req CardRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	crd, err := h.cardService.UpdateCard(id, req.toCard())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, crd)
}

// Delete answers 409 while purchases still reference the card
func (h *CardHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	violation, err := h.cardService.DeleteCard(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if violation != nil {
		RespondViolation(c, violation)
		return
	}
	RespondNoContent(c)
}

// Statement sums the installments a card bills in ?period=YYYY-MM
func (h *CardHandler) Statement(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	period, err := shared.ParsePeriod(c.Query("period"))
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	total, err := h.cardService.Statement(id, period)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, StatementResponse{CardID: id, Period: period, Total: total})
}

func (h *CardHandler) ListPurchases(c *gin.Context) {
	RespondOK(c, h.cardService.Purchases())
}

// GetPurchase returns a purchase together with its installment plan
func (h *CardHandler) GetPurchase(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	p, err := h.cardService.Purchase(id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, PurchaseResponse{Purchase: p, Installments: h.cardService.Installments(p.ID)})
}

func (h *CardHandler) CreatePurchase(c *gin.Context) {
	var req PurchaseRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	p, plan, err := h.cardService.CreatePurchase(req.toPurchase())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondCreated(c, PurchaseResponse{Purchase: p, Installments: plan})
}

// DeletePurchase removes a purchase and its installments
func (h *CardHandler) DeletePurchase(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}

	if err := h.cardService.DeletePurchase(id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondNoContent(c)
}

// ListInstallments lists every installment, or those of ?purchase_id
func (h *CardHandler) ListInstallments(c *gin.Context) {
	purchaseID := uuid.Nil
	if raw := c.Query("purchase_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid purchase_id")
			return
		}
		purchaseID = parsed
	}
	RespondOK(c, h.cardService.Installments(purchaseID))
}

func (h *CardHandler) SetInstallmentPaid(c *gin.Context) {
	id, ok := parseID(c, h.logger, "id")
	if !ok {
		return
	}
	var req InstallmentPaidRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	inst, err := h.cardService.SetInstallmentPaid(id, *req.Paid)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, inst)
}
