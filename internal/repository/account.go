package repository

import (
	"context"

	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository adds the opening value update, the only write path for
// the columns the batch upsert never touches.
type AccountRepository struct {
	*Repository[*account.Account]
}

func NewAccountRepository(b Backends) *AccountRepository {
	return &AccountRepository{Repository: New(AccountDescriptor, b)}
}

// UpdateOpeningValue writes the opening balance and date of one account to the
// remote store. Anonymous identities have nothing to do here: the local
// document already carries the new value on the next save. Failures are
// logged and reported, never returned.
func (r *AccountRepository) UpdateOpeningValue(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date shared.Date) {
	id, err := r.resolver.Current(ctx)
	if err != nil {
		r.logger.Error("Failed to resolve identity for opening value update", "account_id", accountID, "error", err)
		r.fail(ctx, failure.OperationOpeningValue, id, 1, err)
		return
	}
	if id.IsAnonymous() {
		return
	}

	values := map[string]any{
		"saldo_inicial":      amount.String(),
		"data_saldo_inicial": date.String(),
	}
	if err := r.remote.UpdateColumns(ctx, r.desc.Table, id, accountID, values); err != nil {
		r.logger.Error("Failed to update opening value", "account_id", accountID, "user_id", id.UserID, "error", err)
		r.fail(ctx, failure.OperationOpeningValue, id, 1, err)
		return
	}

	r.logger.Debug("Opening value updated", "account_id", accountID, "user_id", id.UserID)
}
