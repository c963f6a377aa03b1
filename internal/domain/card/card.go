// Package card models credit cards, their purchases and the installments
// those purchases are split into across billing periods.
package card

import (
	"errors"
	"strings"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("card name cannot be empty")
	ErrInvalidDay    = errors.New("closing and due days must be between 1 and 31")
	ErrNegativeLimit = errors.New("card limit cannot be negative")
)

type Card struct {
	shared.Base
	Name             string          `json:"nome"`
	Limit            decimal.Decimal `json:"limite"`
	ClosingDay       int             `json:"dia_fechamento"`
	DueDay           int             `json:"dia_vencimento"`
	DefaultAccountID *uuid.UUID      `json:"conta_padrao_id,omitempty"`
	Active           bool            `json:"ativo"`
}

func (c *Card) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	if c.Limit.IsNegative() {
		return ErrNegativeLimit
	}
	return nil
}

// SettlesFrom reports whether the card designates accountID as its default settlement account.
func (c *Card) SettlesFrom(accountID uuid.UUID) bool {
	return c.DefaultAccountID != nil && *c.DefaultAccountID == accountID
}

// BillingPeriod returns the statement a purchase made on date falls into.
// Purchases after the closing day go to the next statement.
func (c *Card) BillingPeriod(date shared.Date) shared.Period {
	period := shared.PeriodOf(date)
	if date.Day() > c.ClosingDay {
		return period.AddMonths(1)
	}
	return period
}
