package service

import (
	"context"
	"io"
	"time"

	"github.com/carteira-sync/internal/dataops"
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/carteira-sync/internal/workspace"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService defines the interface for account operations
type AccountService interface {
	Accounts() []*account.Account
	// Account returns shared.ErrNotFound if the account doesn't exist
	Account(id uuid.UUID) (*account.Account, error)
	CreateAccount(a *account.Account) (*account.Account, error)
	// UpdateAccount never touches the opening value; use SetOpeningValue
	UpdateAccount(id uuid.UUID, next *account.Account) (*account.Account, error)
	SetOpeningValue(id uuid.UUID, amount decimal.Decimal, date shared.Date) (*account.Account, error)
	// DeleteAccount returns a violation instead of deleting when cards settle from the account
	DeleteAccount(id uuid.UUID) (*shared.Violation, error)
}

// CategoryService defines the interface for category operations
type CategoryService interface {
	Categories() []*category.Category
	Category(id uuid.UUID) (*category.Category, error)
	CreateCategory(c *category.Category) (*category.Category, error)
	UpdateCategory(id uuid.UUID, next *category.Category) (*category.Category, error)
	DeleteCategory(id uuid.UUID) (*shared.Violation, error)
}

// TransactionService defines the interface for transaction operations,
// including transfers and recurring series
type TransactionService interface {
	Transactions() []*transaction.Transaction
	Transaction(id uuid.UUID) (*transaction.Transaction, error)
	CreateTransaction(t *transaction.Transaction) (*transaction.Transaction, error)
	UpdateTransaction(id uuid.UUID, next *transaction.Transaction) (*transaction.Transaction, error)
	DeleteTransaction(id uuid.UUID) error
	CreateTransfer(from, to uuid.UUID, amount decimal.Decimal, date shared.Date, description string) (*transaction.Transaction, *transaction.Transaction, error)
	CreateRecurring(template *transaction.Transaction, occurrences int) ([]*transaction.Transaction, error)
	// DeleteRecurrence returns how many occurrences were removed
	DeleteRecurrence(group uuid.UUID, forecastOnly bool) int
}

// CardService defines the interface for cards, purchases and installments
type CardService interface {
	Cards() []*card.Card
	Card(id uuid.UUID) (*card.Card, error)
	CreateCard(c *card.Card) (*card.Card, error)
	UpdateCard(id uuid.UUID, next *card.Card) (*card.Card, error)
	DeleteCard(id uuid.UUID) (*shared.Violation, error)
	Statement(cardID uuid.UUID, period shared.Period) (decimal.Decimal, error)

	Purchases() []*card.Purchase
	Purchase(id uuid.UUID) (*card.Purchase, error)
	CreatePurchase(p *card.Purchase) (*card.Purchase, []*card.Installment, error)
	DeletePurchase(id uuid.UUID) error
	// Installments lists the plan of one purchase, or every installment for uuid.Nil
	Installments(purchaseID uuid.UUID) []*card.Installment
	SetInstallmentPaid(id uuid.UUID, paid bool) (*card.Installment, error)
}

// BudgetService defines the interface for per-period category budgets
type BudgetService interface {
	// Budgets lists the budgets of period, or all of them for an empty period
	Budgets(period shared.Period) []*budget.CategoryBudget
	SetBudget(categoryID uuid.UUID, period shared.Period, amount decimal.Decimal) (*budget.CategoryBudget, error)
	DeleteBudget(id uuid.UUID) error
}

// DataService defines the interface for whole-dataset operations
type DataService interface {
	Export(ctx context.Context) (*dataops.Snapshot, []byte, error)
	// Import returns dataops.ErrImportNotSupported
	Import(ctx context.Context, r io.Reader) error
	PreviewPurge(ctx context.Context) (*dataops.PurgePreview, error)
	Purge(ctx context.Context, token string) error
}

// SessionService defines the interface for switching between the anonymous
// and the authenticated backend
type SessionService interface {
	Current(ctx context.Context) (identity.Identity, error)
	SignIn(ctx context.Context, token string) (identity.Identity, error)
	SignOut(ctx context.Context) error
}

// StatusService reports the load state of the in-memory contexts
type StatusService interface {
	Status() []workspace.ContextStatus
}

// FailureCounter reports persistence failures seen by this process
type FailureCounter interface {
	Total() int64
	Snapshot() map[string]int64
}

// FailureLog reads the persisted failure audit trail
type FailureLog interface {
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*failure.Event, error)
	GetByEntity(ctx context.Context, entity string, limit, offset int) ([]*failure.Event, error)
	CountByEntity(ctx context.Context, entity string) (int64, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*failure.Event, error)
}
