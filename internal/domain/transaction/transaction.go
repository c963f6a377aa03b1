package transaction

import (
	"errors"
	"strings"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingAccount  = errors.New("account is required")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrZeroAmount      = errors.New("amount cannot be zero")
)

type Type string

const (
	TypeIncome     Type = "receita"
	TypeExpense    Type = "despesa"
	TypeTransfer   Type = "transferencia"
	TypeInvestment Type = "investimento"
	TypeReversal   Type = "estorno"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer, TypeInvestment, TypeReversal:
		return true
	}
	return false
}

// Transaction is a single signed movement on an account. Expenses carry
// negative amounts.
type Transaction struct {
	shared.Base
	AccountID    uuid.UUID       `json:"conta_id"`
	Date         shared.Date     `json:"data"`
	Amount       decimal.Decimal `json:"valor"`
	CategoryID   uuid.UUID       `json:"categoria_id"`
	Type         Type            `json:"tipo"`
	Description  string          `json:"descricao"`
	CardID       *uuid.UUID      `json:"cartao_id,omitempty"`
	TransferID   *uuid.UUID      `json:"transferencia_id,omitempty"`
	Forecast     bool            `json:"previsto"`
	Realized     bool            `json:"realizado"`
	RecurrenceID *uuid.UUID      `json:"recorrencia_id,omitempty"`
}

func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return ErrMissingAccount
	}
	if t.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// Normalize trims the description and signs the amount by type.
func (t *Transaction) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	switch t.Type {
	case TypeExpense, TypeInvestment:
		t.Amount = t.Amount.Abs().Neg()
	case TypeIncome, TypeReversal:
		t.Amount = t.Amount.Abs()
	}
}

// ReferencesCategory reports whether t is classified under categoryID.
func (t *Transaction) ReferencesCategory(categoryID uuid.UUID) bool {
	return t.CategoryID == categoryID
}
