package transaction

import (
	"errors"
	"fmt"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSameAccount       = errors.New("transfer accounts must differ")
	ErrNonPositiveAmount = errors.New("transfer amount must be positive")
	ErrBrokenTransfer    = errors.New("transfer legs must reference each other with opposite amounts")
)

// NewTransfer builds the two unlinked legs of a transfer: a debit on from and
// a credit on to. Link them once both have ids.
func NewTransfer(from, to, categoryID uuid.UUID, amount decimal.Decimal, date shared.Date, description string) (*Transaction, *Transaction, error) {
	if from == to {
		return nil, nil, ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, nil, ErrNonPositiveAmount
	}

	out := &Transaction{
		AccountID:   from,
		Date:        date,
		Amount:      amount.Neg(),
		CategoryID:  categoryID,
		Type:        TypeTransfer,
		Description: description,
		Realized:    true,
	}
	in := &Transaction{
		AccountID:   to,
		Date:        date,
		Amount:      amount,
		CategoryID:  categoryID,
		Type:        TypeTransfer,
		Description: description,
		Realized:    true,
	}

	for _, leg := range []*Transaction{out, in} {
		if err := leg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid transfer leg: %w", err)
		}
	}
	return out, in, nil
}

// Link points each leg at the other.
func Link(a, b *Transaction) {
	aID, bID := a.ID, b.ID
	a.TransferID = &bID
	b.TransferID = &aID
}

// CheckTransfer verifies a and b form exactly one transfer pair.
func CheckTransfer(a, b *Transaction) error {
	if a.TransferID == nil || b.TransferID == nil {
		return ErrBrokenTransfer
	}
	if *a.TransferID != b.ID || *b.TransferID != a.ID {
		return ErrBrokenTransfer
	}
	if !a.Amount.Add(b.Amount).IsZero() || a.Amount.IsZero() {
		return ErrBrokenTransfer
	}
	return nil
}

// Counterpart returns the other leg of t's transfer, if present in all.
func Counterpart(all []*Transaction, t *Transaction) *Transaction {
	if t.TransferID == nil {
		return nil
	}
	for _, other := range all {
		if other.ID == *t.TransferID {
			return other
		}
	}
	return nil
}
