package workspace

import (
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (w *Workspace) Transactions() []*transaction.Transaction {
	return w.transactions.All()
}

func (w *Workspace) Transaction(id uuid.UUID) (*transaction.Transaction, error) {
	t, ok := w.transactions.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "transaction", ID: id}
	}
	return t, nil
}

func (w *Workspace) CreateTransaction(t *transaction.Transaction) (*transaction.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := w.checkTransactionRefs(t); err != nil {
		return nil, err
	}
	t.TransferID = nil
	t = w.transactionRepo.Create(t)
	w.transactions.Add(t)
	return t, nil
}

// UpdateTransaction replaces a transaction. Editing one leg of a transfer
// mirrors date, description and the negated amount onto the other leg.
func (w *Workspace) UpdateTransaction(id uuid.UUID, next *transaction.Transaction) (*transaction.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.Transaction(id)
	if err != nil {
		return nil, err
	}

	next = w.transactionRepo.Revise(prev, next)
	next.TransferID = prev.TransferID
	next.RecurrenceID = prev.RecurrenceID
	next.Normalize()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := w.checkTransactionRefs(next); err != nil {
		return nil, err
	}

	updates := []*transaction.Transaction{next}
	if other := transaction.Counterpart(w.transactions.All(), prev); other != nil {
		mirror := *other
		mirror.Date = next.Date
		mirror.Amount = next.Amount.Neg()
		mirror.Description = next.Description
		w.transactionRepo.Update(&mirror)
		if err := transaction.CheckTransfer(next, &mirror); err != nil {
			return nil, err
		}
		updates = append(updates, &mirror)
	}

	w.transactions.Update(updates...)
	return next, nil
}

// DeleteTransaction removes a transaction, and its counterpart when it is a
// transfer leg.
func (w *Workspace) DeleteTransaction(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.Transaction(id)
	if err != nil {
		return err
	}
	ids := []uuid.UUID{id}
	if other := transaction.Counterpart(w.transactions.All(), t); other != nil {
		ids = append(ids, other.ID)
	}
	w.transactions.Delete(ids...)
	return nil
}

// CreateTransfer records amount leaving from and entering to as two linked
// transactions under the system transfer category.
func (w *Workspace) CreateTransfer(from, to uuid.UUID, amount decimal.Decimal, date shared.Date, description string) (*transaction.Transaction, *transaction.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, id := range []uuid.UUID{from, to} {
		if _, err := w.Account(id); err != nil {
			return nil, nil, err
		}
	}
	cat := category.FindSystem(w.categories.All(), category.TypeTransfer)
	if cat == nil {
		return nil, nil, ErrMissingTransferCategory
	}

	out, in, err := transaction.NewTransfer(from, to, cat.ID, amount, date, description)
	if err != nil {
		return nil, nil, err
	}
	out = w.transactionRepo.Create(out)
	in = w.transactionRepo.Create(in)
	transaction.Link(out, in)

	w.transactions.Add(out, in)
	w.logger.Info("Transfer created", "from", from, "to", to, "amount", amount.String())
	return out, in, nil
}

// CreateRecurring expands template into a monthly series.
func (w *Workspace) CreateRecurring(template *transaction.Transaction, occurrences int) ([]*transaction.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	template.Normalize()
	if err := w.checkTransactionRefs(template); err != nil {
		return nil, err
	}
	template.TransferID = nil

	series, err := transaction.Series(*template, occurrences, shared.Today())
	if err != nil {
		return nil, err
	}
	for i, t := range series {
		series[i] = w.transactionRepo.Create(t)
	}
	w.transactions.Add(series...)
	w.logger.Info("Recurring series created", "recurrence_id", *series[0].RecurrenceID, "occurrences", len(series))
	return series, nil
}

// DeleteRecurrence removes the members of a recurrence group. With
// forecastOnly, realized occurrences are kept. It returns how many were removed.
func (w *Workspace) DeleteRecurrence(group uuid.UUID, forecastOnly bool) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ids []uuid.UUID
	for _, t := range w.transactions.All() {
		if !transaction.InGroup(t, group) {
			continue
		}
		if forecastOnly && !t.Forecast {
			continue
		}
		ids = append(ids, t.ID)
	}
	w.transactions.Delete(ids...)
	return len(ids)
}

func (w *Workspace) checkTransactionRefs(t *transaction.Transaction) error {
	if _, err := w.Account(t.AccountID); err != nil {
		return err
	}
	if _, err := w.Category(t.CategoryID); err != nil {
		return err
	}
	if t.CardID != nil {
		if _, err := w.Card(*t.CardID); err != nil {
			return err
		}
	}
	return nil
}
