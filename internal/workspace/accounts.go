package workspace

import (
	"context"

	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (w *Workspace) Accounts() []*account.Account {
	return w.accounts.All()
}

func (w *Workspace) Account(id uuid.UUID) (*account.Account, error) {
	a, ok := w.accounts.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "account", ID: id}
	}
	return a, nil
}

func (w *Workspace) CreateAccount(a *account.Account) (*account.Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := a.Validate(); err != nil {
		return nil, err
	}
	a = w.accountRepo.Create(a)
	w.accounts.Add(a)
	w.logger.Info("Account created", "account_id", a.ID)
	return a, nil
}

// UpdateAccount replaces the account id with next. The opening balance and
// date are kept; use SetOpeningValue to change them.
func (w *Workspace) UpdateAccount(id uuid.UUID, next *account.Account) (*account.Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.Account(id)
	if err != nil {
		return nil, err
	}
	next = w.accountRepo.Revise(prev, next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	w.accounts.Update(next)
	return next, nil
}

// SetOpeningValue changes the opening balance and date of an account. The
// cache changes at once; the remote column update runs in the background.
func (w *Workspace) SetOpeningValue(id uuid.UUID, amount decimal.Decimal, date shared.Date) (*account.Account, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.Account(id)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, account.ErrMissingDate
	}

	next := w.accountRepo.Update(prev.WithOpeningValue(amount, date))
	w.accounts.Update(next)
	w.detached(func(ctx context.Context) {
		w.accountRepo.UpdateOpeningValue(ctx, id, amount, date)
	})
	w.logger.Info("Opening value changed", "account_id", id, "amount", amount.String(), "date", date.String())
	return next, nil
}

// DeleteAccount removes an account unless a card settles from it. A blocked
// deletion is reported as a violation, not an error.
func (w *Workspace) DeleteAccount(id uuid.UUID) (*shared.Violation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Account(id); err != nil {
		return nil, err
	}
	if v := repository.ValidateAccountDeletion(id, w.cards.All(), w.transactions.All()); v != nil {
		w.logger.Info("Account deletion blocked", "account_id", id, "reason", v.Reason)
		return v, nil
	}
	w.accounts.Delete(id)
	w.logger.Info("Account deleted", "account_id", id)
	return nil, nil
}
