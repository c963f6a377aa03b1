package workspace

import (
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budgets returns the budgets of period, or every budget for an empty period.
func (w *Workspace) Budgets(period shared.Period) []*budget.CategoryBudget {
	all := w.budgets.All()
	if period == "" {
		return all
	}
	return budget.ForPeriod(all, period)
}

// SetBudget creates or replaces the budget of a category for one period.
func (w *Workspace) SetBudget(categoryID uuid.UUID, period shared.Period, amount decimal.Decimal) (*budget.CategoryBudget, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Category(categoryID); err != nil {
		return nil, err
	}
	next := &budget.CategoryBudget{CategoryID: categoryID, Period: period, Amount: amount}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if prev := budget.Find(w.budgets.All(), next.Key()); prev != nil {
		next = w.budgetRepo.Revise(prev, next)
		w.budgets.Update(next)
		return next, nil
	}

	next = w.budgetRepo.Create(next)
	w.budgets.Add(next)
	return next, nil
}

func (w *Workspace) DeleteBudget(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.budgets.Get(id); !ok {
		return shared.ErrNotFound{Entity: "budget", ID: id}
	}
	w.budgets.Delete(id)
	return nil
}
