package card

import (
	"errors"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingCard         = errors.New("card is required")
	ErrMissingCategory     = errors.New("category is required")
	ErrMissingPurchaseDate = errors.New("purchase date is required")
	ErrNonPositiveTotal    = errors.New("purchase total must be positive")
	ErrInvalidInstallments = errors.New("installment count must be between 1 and 72")
)

const maxInstallments = 72

// Purchase is a card purchase, paid over one or more installments.
// Reversals are credits on the card and keep a positive total.
type Purchase struct {
	shared.Base
	CardID           uuid.UUID       `json:"cartao_id"`
	PurchaseDate     shared.Date     `json:"data_compra"`
	Total            decimal.Decimal `json:"valor_total"`
	InstallmentCount int             `json:"parcelas"`
	CategoryID       uuid.UUID       `json:"categoria_id"`
	Reversal         bool            `json:"estorno"`
	Description      string          `json:"descricao"`
	RecurrenceID     *uuid.UUID      `json:"recorrencia_id,omitempty"`
}

func (p *Purchase) Validate() error {
	if p.CardID == uuid.Nil {
		return ErrMissingCard
	}
	if p.CategoryID == uuid.Nil {
		return ErrMissingCategory
	}
	if p.PurchaseDate.IsZero() {
		return ErrMissingPurchaseDate
	}
	if !p.Total.IsPositive() {
		return ErrNonPositiveTotal
	}
	if p.InstallmentCount < 1 || p.InstallmentCount > maxInstallments {
		return ErrInvalidInstallments
	}
	return nil
}

// Installment is the share of a purchase billed in one period.
type Installment struct {
	shared.Base
	PurchaseID uuid.UUID       `json:"compra_id"`
	Number     int             `json:"numero"`
	Amount     decimal.Decimal `json:"valor"`
	Period     shared.Period   `json:"competencia"`
	Paid       bool            `json:"paga"`
}

// PlanInstallments splits p into p.InstallmentCount installments starting at
// first. Each share is truncated to cents and the last installment absorbs the
// remainder, so the amounts always add up to the total.
func PlanInstallments(p *Purchase, first shared.Period) ([]*Installment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := int64(p.InstallmentCount)
	share := p.Total.Div(decimal.NewFromInt(n)).Truncate(2)
	remaining := p.Total

	plan := make([]*Installment, 0, n)
	for i := int64(1); i <= n; i++ {
		amount := share
		if i == n {
			amount = remaining
		}
		remaining = remaining.Sub(amount)
		plan = append(plan, &Installment{
			PurchaseID: p.ID,
			Number:     int(i),
			Amount:     amount,
			Period:     first.AddMonths(int(i - 1)),
		})
	}
	return plan, nil
}

// SumInstallments adds the amounts of the installments of purchaseID.
func SumInstallments(all []*Installment, purchaseID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range all {
		if inst.PurchaseID == purchaseID {
			total = total.Add(inst.Amount)
		}
	}
	return total
}

// StatementTotal is what a card owes for period: installments of its
// purchases billed in that period, with reversals subtracted.
func StatementTotal(purchases []*Purchase, installments []*Installment, cardID uuid.UUID, period shared.Period) decimal.Decimal {
	byID := make(map[uuid.UUID]*Purchase, len(purchases))
	for _, p := range purchases {
		if p.CardID == cardID {
			byID[p.ID] = p
		}
	}

	total := decimal.Zero
	for _, inst := range installments {
		p, ok := byID[inst.PurchaseID]
		if !ok || inst.Period != period {
			continue
		}
		if p.Reversal {
			total = total.Sub(inst.Amount)
		} else {
			total = total.Add(inst.Amount)
		}
	}
	return total
}
