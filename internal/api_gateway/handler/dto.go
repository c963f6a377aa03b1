package handler

import (
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request bodies use the same field names the entities are stored with.

// AccountRequest creates or updates an account. The opening value is only
// honored on create.
type AccountRequest struct {
	Name           string          `json:"nome" binding:"required"`
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
	OpeningDate    shared.Date     `json:"data_saldo_inicial"`
	Active         *bool           `json:"ativa"`
	Color          string          `json:"cor"`
}

func (r AccountRequest) toAccount() *account.Account {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &account.Account{
		Name:           r.Name,
		OpeningBalance: r.OpeningBalance,
		OpeningDate:    r.OpeningDate,
		Active:         active,
		Color:          r.Color,
	}
}

// OpeningValueRequest replaces an account's opening balance and date
type OpeningValueRequest struct {
	Amount decimal.Decimal `json:"saldo_inicial"`
	Date   shared.Date     `json:"data_saldo_inicial"`
}

// CategoryRequest creates or updates a user category
type CategoryRequest struct {
	Name          string           `json:"nome" binding:"required"`
	Type          category.Type    `json:"tipo" binding:"required"`
	MonthlyBudget *decimal.Decimal `json:"orcamento_mensal"`
	Order         int              `json:"ordem"`
}

func (r CategoryRequest) toCategory() *category.Category {
	return &category.Category{
		Name:          r.Name,
		Type:          r.Type,
		MonthlyBudget: r.MonthlyBudget,
		Order:         r.Order,
	}
}

// TransactionRequest creates or updates a transaction, or serves as the
// template of a recurring series
type TransactionRequest struct {
	AccountID   uuid.UUID        `json:"conta_id" binding:"required"`
	CategoryID  uuid.UUID        `json:"categoria_id" binding:"required"`
	Date        shared.Date      `json:"data"`
	Amount      decimal.Decimal  `json:"valor"`
	Type        transaction.Type `json:"tipo" binding:"required"`
	Description string           `json:"descricao"`
	CardID      *uuid.UUID       `json:"cartao_id"`
	Forecast    bool             `json:"previsto"`
	Realized    bool             `json:"realizado"`
}

func (r TransactionRequest) toTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Date:        r.Date,
		Amount:      r.Amount,
		Type:        r.Type,
		Description: r.Description,
		CardID:      r.CardID,
		Forecast:    r.Forecast,
		Realized:    r.Realized,
	}
}

// RecurringRequest expands a transaction template into a monthly series
type RecurringRequest struct {
	TransactionRequest
	Occurrences int `json:"ocorrencias" binding:"required,min=1"`
}

// TransferRequest moves money between two accounts
type TransferRequest struct {
	From        uuid.UUID       `json:"conta_origem_id" binding:"required"`
	To          uuid.UUID       `json:"conta_destino_id" binding:"required"`
	Amount      decimal.Decimal `json:"valor"`
	Date        shared.Date     `json:"data"`
	Description string          `json:"descricao"`
}

// TransferResponse holds both legs of a transfer
type TransferResponse struct {
	Out *transaction.Transaction `json:"saida"`
	In  *transaction.Transaction `json:"entrada"`
}

// RecurrenceDeletedResponse reports how many occurrences were removed
type RecurrenceDeletedResponse struct {
	Removed int `json:"removidas"`
}

// CardRequest creates or updates a credit card
type CardRequest struct {
	Name             string          `json:"nome" binding:"required"`
	Limit            decimal.Decimal `json:"limite"`
	ClosingDay       int             `json:"dia_fechamento" binding:"required"`
	DueDay           int             `json:"dia_vencimento" binding:"required"`
	DefaultAccountID *uuid.UUID      `json:"conta_padrao_id"`
	Active           *bool           `json:"ativo"`
}

func (r CardRequest) toCard() *card.Card {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &card.Card{
		Name:             r.Name,
		Limit:            r.Limit,
		ClosingDay:       r.ClosingDay,
		DueDay:           r.DueDay,
		DefaultAccountID: r.DefaultAccountID,
		Active:           active,
	}
}

// StatementResponse is the amount a card bills in one period
type StatementResponse struct {
	CardID uuid.UUID       `json:"cartao_id"`
	Period shared.Period   `json:"competencia"`
	Total  decimal.Decimal `json:"total"`
}

// PurchaseRequest records a card purchase and plans its installments
type PurchaseRequest struct {
	CardID           uuid.UUID       `json:"cartao_id" binding:"required"`
	PurchaseDate     shared.Date     `json:"data_compra"`
	Total            decimal.Decimal `json:"valor_total"`
	InstallmentCount int             `json:"parcelas"`
	CategoryID       uuid.UUID       `json:"categoria_id" binding:"required"`
	Reversal         bool            `json:"estorno"`
	Description      string          `json:"descricao"`
}

func (r PurchaseRequest) toPurchase() *card.Purchase {
	count := r.InstallmentCount
	if count == 0 {
		count = 1
	}
	return &card.Purchase{
		CardID:           r.CardID,
		PurchaseDate:     r.PurchaseDate,
		Total:            r.Total,
		InstallmentCount: count,
		CategoryID:       r.CategoryID,
		Reversal:         r.Reversal,
		Description:      r.Description,
	}
}

// PurchaseResponse is a purchase together with its installment plan
type PurchaseResponse struct {
	Purchase     *card.Purchase      `json:"compra"`
	Installments []*card.Installment `json:"parcelas"`
}

// InstallmentPaidRequest marks an installment paid or unpaid
type InstallmentPaidRequest struct {
	Paid *bool `json:"paga" binding:"required"`
}

// BudgetRequest sets the budget of a category for one period
type BudgetRequest struct {
	CategoryID uuid.UUID       `json:"categoria_id" binding:"required"`
	Period     string          `json:"competencia" binding:"required"`
	Amount     decimal.Decimal `json:"valor"`
}

// SignInRequest carries the session token issued by the auth backend
type SignInRequest struct {
	Token string `json:"token" binding:"required"`
}

// SessionResponse describes the identity storage is currently routed by
type SessionResponse struct {
	UserID    string `json:"user_id,omitempty"`
	Anonymous bool   `json:"anonymous"`
	Backend   string `json:"backend"`
}

// PurgeRequest confirms a purge with the token from its preview
type PurgeRequest struct {
	Token string `json:"token" binding:"required"`
}
