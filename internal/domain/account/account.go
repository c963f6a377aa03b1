package account

import (
	"errors"
	"strings"
	"time"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName    = errors.New("account name cannot be empty")
	ErrNameTooLong  = errors.New("account name must be at most 80 characters")
	ErrMissingDate  = errors.New("opening date is required")
	ErrInvalidColor = errors.New("color must be a hex code like #1a2b3c")
)

const maxNameLength = 80

// Account is a place money lives: a bank account, a wallet, cash.
// OpeningBalance and OpeningDate are only written through the dedicated
// opening value operation, never by a generic update.
type Account struct {
	shared.Base
	Name           string          `json:"nome"`
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
	OpeningDate    shared.Date     `json:"data_saldo_inicial"`
	Active         bool            `json:"ativa"`
	Color          string          `json:"cor,omitempty"`
}

// NewAccount validates the fields of a new, still unidentified account.
func NewAccount(name string, openingBalance decimal.Decimal, openingDate shared.Date, color string) (*Account, error) {
	a := &Account{
		Name:           strings.TrimSpace(name),
		OpeningBalance: openingBalance,
		OpeningDate:    openingDate,
		Active:         true,
		Color:          color,
	}
	if a.OpeningDate.IsZero() {
		a.OpeningDate = shared.DateOf(time.Now())
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Account) Validate() error {
	if a.Name == "" {
		return ErrEmptyName
	}
	if len([]rune(a.Name)) > maxNameLength {
		return ErrNameTooLong
	}
	if a.OpeningDate.IsZero() {
		return ErrMissingDate
	}
	if a.Color != "" && !validColor(a.Color) {
		return ErrInvalidColor
	}
	return nil
}

// WithOpeningValue returns a copy of a with a new opening balance and date.
func (a *Account) WithOpeningValue(amount decimal.Decimal, date shared.Date) *Account {
	next := *a
	next.OpeningBalance = amount
	next.OpeningDate = date
	return &next
}

// KeepOpeningValue copies the opening balance and date of prev onto next so a
// generic update cannot change them.
func KeepOpeningValue(prev, next *Account) {
	next.OpeningBalance = prev.OpeningBalance
	next.OpeningDate = prev.OpeningDate
}

func validColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
