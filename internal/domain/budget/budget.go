package budget

import (
	"errors"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingCategory = errors.New("category is required")
	ErrNegativeAmount  = errors.New("budget amount cannot be negative")
)

// CategoryBudget is the amount planned for a category in one billing period.
// There is at most one per (user, category, period).
type CategoryBudget struct {
	shared.Base
	CategoryID uuid.UUID       `json:"categoria_id"`
	Period     shared.Period   `json:"competencia"`
	Amount     decimal.Decimal `json:"valor"`
}

func (b *CategoryBudget) Validate() error {
	if b.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if b.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Key identifies a budget by its natural key.
type Key struct {
	CategoryID uuid.UUID
	Period     shared.Period
}

func (b *CategoryBudget) Key() Key {
	return Key{CategoryID: b.CategoryID, Period: b.Period}
}

// Find returns the budget with key k, if any.
func Find(all []*CategoryBudget, k Key) *CategoryBudget {
	for _, b := range all {
		if b.Key() == k {
			return b
		}
	}
	return nil
}

// ForPeriod returns the budgets of period, in collection order.
func ForPeriod(all []*CategoryBudget, period shared.Period) []*CategoryBudget {
	var out []*CategoryBudget
	for _, b := range all {
		if b.Period == period {
			out = append(out, b)
		}
	}
	return out
}
