package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carteira-sync/internal/api_gateway/service"
	"github.com/carteira-sync/internal/dataops"
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/carteira-sync/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Accounts() []*account.Account {
	return m.Called().Get(0).([]*account.Account)
}

func (m *MockAccountService) Account(id uuid.UUID) (*account.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(a *account.Account) (*account.Account, error) {
	args := m.Called(a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(id uuid.UUID, next *account.Account) (*account.Account, error) {
	args := m.Called(id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) SetOpeningValue(id uuid.UUID, amount decimal.Decimal, date shared.Date) (*account.Account, error) {
	args := m.Called(id, amount, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(id uuid.UUID) (*shared.Violation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Violation), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Categories() []*category.Category {
	return m.Called().Get(0).([]*category.Category)
}

func (m *MockCategoryService) Category(id uuid.UUID) (*category.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) CreateCategory(c *category.Category) (*category.Category, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(id uuid.UUID, next *category.Category) (*category.Category, error) {
	args := m.Called(id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(id uuid.UUID) (*shared.Violation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Violation), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Transactions() []*transaction.Transaction {
	return m.Called().Get(0).([]*transaction.Transaction)
}

func (m *MockTransactionService) Transaction(id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) CreateTransaction(t *transaction.Transaction) (*transaction.Transaction, error) {
	args := m.Called(t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(id uuid.UUID, next *transaction.Transaction) (*transaction.Transaction, error) {
	args := m.Called(id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(id uuid.UUID) error {
	return m.Called(id).Error(0)
}

func (m *MockTransactionService) CreateTransfer(from, to uuid.UUID, amount decimal.Decimal, date shared.Date, description string) (*transaction.Transaction, *transaction.Transaction, error) {
	args := m.Called(from, to, amount, date, description)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*transaction.Transaction), args.Get(1).(*transaction.Transaction), args.Error(2)
}

func (m *MockTransactionService) CreateRecurring(template *transaction.Transaction, occurrences int) ([]*transaction.Transaction, error) {
	args := m.Called(template, occurrences)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteRecurrence(group uuid.UUID, forecastOnly bool) int {
	return m.Called(group, forecastOnly).Int(0)
}

type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) Cards() []*card.Card {
	return m.Called().Get(0).([]*card.Card)
}

func (m *MockCardService) Card(id uuid.UUID) (*card.Card, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *MockCardService) CreateCard(c *card.Card) (*card.Card, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *MockCardService) UpdateCard(id uuid.UUID, next *card.Card) (*card.Card, error) {
	args := m.Called(id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *MockCardService) DeleteCard(id uuid.UUID) (*shared.Violation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Violation), args.Error(1)
}

func (m *MockCardService) Statement(cardID uuid.UUID, period shared.Period) (decimal.Decimal, error) {
	args := m.Called(cardID, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCardService) Purchases() []*card.Purchase {
	return m.Called().Get(0).([]*card.Purchase)
}

func (m *MockCardService) Purchase(id uuid.UUID) (*card.Purchase, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Purchase), args.Error(1)
}

func (m *MockCardService) CreatePurchase(p *card.Purchase) (*card.Purchase, []*card.Installment, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*card.Purchase), args.Get(1).([]*card.Installment), args.Error(2)
}

func (m *MockCardService) DeletePurchase(id uuid.UUID) error {
	return m.Called(id).Error(0)
}

func (m *MockCardService) Installments(purchaseID uuid.UUID) []*card.Installment {
	return m.Called(purchaseID).Get(0).([]*card.Installment)
}

func (m *MockCardService) SetInstallmentPaid(id uuid.UUID, paid bool) (*card.Installment, error) {
	args := m.Called(id, paid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Installment), args.Error(1)
}

type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) Budgets(period shared.Period) []*budget.CategoryBudget {
	return m.Called(period).Get(0).([]*budget.CategoryBudget)
}

func (m *MockBudgetService) SetBudget(categoryID uuid.UUID, period shared.Period, amount decimal.Decimal) (*budget.CategoryBudget, error) {
	args := m.Called(categoryID, period, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.CategoryBudget), args.Error(1)
}

func (m *MockBudgetService) DeleteBudget(id uuid.UUID) error {
	return m.Called(id).Error(0)
}

type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) Export(ctx context.Context) (*dataops.Snapshot, []byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*dataops.Snapshot), args.Get(1).([]byte), args.Error(2)
}

func (m *MockDataService) Import(ctx context.Context, r io.Reader) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockDataService) PreviewPurge(ctx context.Context) (*dataops.PurgePreview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataops.PurgePreview), args.Error(1)
}

func (m *MockDataService) Purge(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Current(ctx context.Context) (identity.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).(identity.Identity), args.Error(1)
}

func (m *MockSessionService) SignIn(ctx context.Context, token string) (identity.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(identity.Identity), args.Error(1)
}

func (m *MockSessionService) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubStatus []workspace.ContextStatus

func (s stubStatus) Status() []workspace.ContextStatus { return s }

type stubCounter map[string]int64

func (s stubCounter) Total() int64 {
	var total int64
	for _, n := range s {
		total += n
	}
	return total
}

func (s stubCounter) Snapshot() map[string]int64 { return s }

var (
	_ service.AccountService     = (*MockAccountService)(nil)
	_ service.CategoryService    = (*MockCategoryService)(nil)
	_ service.TransactionService = (*MockTransactionService)(nil)
	_ service.CardService        = (*MockCardService)(nil)
	_ service.BudgetService      = (*MockBudgetService)(nil)
	_ service.DataService        = (*MockDataService)(nil)
	_ service.SessionService     = (*MockSessionService)(nil)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req, _ := http.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the envelope and then its data field into out.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var envelope struct {
		Data          json.RawMessage `json:"data"`
		Error         *ErrorInfo      `json:"error"`
		CorrelationID string          `json:"correlation_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return Response{Error: envelope.Error, CorrelationID: envelope.CorrelationID}
}
