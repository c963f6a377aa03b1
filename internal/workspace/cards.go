package workspace

import (
	"strings"

	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (w *Workspace) Cards() []*card.Card {
	return w.cards.All()
}

func (w *Workspace) Card(id uuid.UUID) (*card.Card, error) {
	c, ok := w.cards.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "card", ID: id}
	}
	return c, nil
}

func (w *Workspace) CreateCard(c *card.Card) (*card.Card, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkCard(c); err != nil {
		return nil, err
	}
	c = w.cardRepo.Create(c)
	w.cards.Add(c)
	w.logger.Info("Card created", "card_id", c.ID)
	return c, nil
}

func (w *Workspace) UpdateCard(id uuid.UUID, next *card.Card) (*card.Card, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.Card(id)
	if err != nil {
		return nil, err
	}
	next = w.cardRepo.Revise(prev, next)
	if err := w.checkCard(next); err != nil {
		return nil, err
	}
	w.cards.Update(next)
	return next, nil
}

func (w *Workspace) DeleteCard(id uuid.UUID) (*shared.Violation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Card(id); err != nil {
		return nil, err
	}
	if v := repository.ValidateCardDeletion(id, w.purchases.All(), w.transactions.All()); v != nil {
		return v, nil
	}
	w.cards.Delete(id)
	w.logger.Info("Card deleted", "card_id", id)
	return nil, nil
}

func (w *Workspace) checkCard(c *card.Card) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DefaultAccountID != nil {
		if _, err := w.Account(*c.DefaultAccountID); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workspace) Purchases() []*card.Purchase {
	return w.purchases.All()
}

func (w *Workspace) Purchase(id uuid.UUID) (*card.Purchase, error) {
	p, ok := w.purchases.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "purchase", ID: id}
	}
	return p, nil
}

// CreatePurchase records a card purchase and its installment plan. The first
// installment is billed on the statement the purchase date falls into.
func (w *Workspace) CreatePurchase(p *card.Purchase) (*card.Purchase, []*card.Installment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, err := w.Card(p.CardID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := w.Category(p.CategoryID); err != nil {
		return nil, nil, err
	}
	p.Description = strings.TrimSpace(p.Description)
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	p = w.purchaseRepo.Create(p)
	plan, err := card.PlanInstallments(p, c.BillingPeriod(p.PurchaseDate))
	if err != nil {
		return nil, nil, err
	}
	for i, inst := range plan {
		plan[i] = w.installmentRepo.Create(inst)
	}

	w.purchases.Add(p)
	w.installments.Add(plan...)
	w.logger.Info("Purchase created", "purchase_id", p.ID, "card_id", c.ID, "installments", len(plan))
	return p, plan, nil
}

// DeletePurchase removes a purchase together with its installments.
func (w *Workspace) DeletePurchase(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Purchase(id); err != nil {
		return err
	}
	var ids []uuid.UUID
	for _, inst := range w.installments.All() {
		if inst.PurchaseID == id {
			ids = append(ids, inst.ID)
		}
	}
	w.installments.Delete(ids...)
	w.purchases.Delete(id)
	return nil
}

// Installments returns the installments of a purchase, or all of them for uuid.Nil.
func (w *Workspace) Installments(purchaseID uuid.UUID) []*card.Installment {
	all := w.installments.All()
	if purchaseID == uuid.Nil {
		return all
	}
	var out []*card.Installment
	for _, inst := range all {
		if inst.PurchaseID == purchaseID {
			out = append(out, inst)
		}
	}
	return out
}

func (w *Workspace) SetInstallmentPaid(id uuid.UUID, paid bool) (*card.Installment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, ok := w.installments.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "installment", ID: id}
	}
	next := *prev
	next.Paid = paid
	updated := w.installmentRepo.Update(&next)
	w.installments.Update(updated)
	return updated, nil
}

// Statement returns what a card owes for period.
func (w *Workspace) Statement(cardID uuid.UUID, period shared.Period) (decimal.Decimal, error) {
	if _, err := w.Card(cardID); err != nil {
		return decimal.Zero, err
	}
	if err := period.Validate(); err != nil {
		return decimal.Zero, err
	}
	return card.StatementTotal(w.purchases.All(), w.installments.All(), cardID, period), nil
}
