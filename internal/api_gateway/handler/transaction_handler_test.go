package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTransactionRouter(svc *MockTransactionService) *gin.Engine {
	h := NewTransactionHandler(testLogger(), svc)
	r := setupTestRouter()
	r.GET("/transactions", h.List)
	r.GET("/transactions/:id", h.GetByID)
	r.POST("/transactions", h.Create)
	r.PUT("/transactions/:id", h.Update)
	r.DELETE("/transactions/:id", h.Delete)
	r.POST("/transfers", h.CreateTransfer)
	r.POST("/recurrences", h.CreateRecurring)
	r.DELETE("/recurrences/:id", h.DeleteRecurrence)
	return r
}

func TestTransactionHandler_Create(t *testing.T) {
	accountID, categoryID := uuid.New(), uuid.New()
	body := map[string]interface{}{
		"conta_id":     accountID,
		"categoria_id": categoryID,
		"data":         "2024-05-10",
		"valor":        "-42.90",
		"tipo":         "despesa",
		"descricao":    "Padaria",
	}

	t.Run("Success", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("CreateTransaction", mock.MatchedBy(func(tx *transaction.Transaction) bool {
			return tx.AccountID == accountID &&
				tx.CategoryID == categoryID &&
				tx.Amount.Equal(decimal.RequireFromString("-42.90")) &&
				tx.Date.String() == "2024-05-10" &&
				tx.Type == transaction.TypeExpense
		})).Return(&transaction.Transaction{Base: shared.Base{ID: uuid.New()}, AccountID: accountID}, nil)

		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transactions", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("CreateTransaction", mock.Anything).Return(nil, shared.ErrNotFound{Entity: "account", ID: accountID})

		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transactions", body)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("CreateTransaction", mock.Anything).Return(nil, transaction.ErrZeroAmount)

		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transactions", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("MissingAccount", func(t *testing.T) {
		svc := new(MockTransactionService)
		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transactions",
			map[string]interface{}{"categoria_id": categoryID, "tipo": "despesa"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CreateTransaction", mock.Anything)
	})
}

func TestTransactionHandler_CreateTransfer(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	date := shared.NewDate(2024, time.June, 3)
	out := &transaction.Transaction{Base: shared.Base{ID: uuid.New()}, AccountID: from, Amount: decimal.NewFromInt(-50)}
	in := &transaction.Transaction{Base: shared.Base{ID: uuid.New()}, AccountID: to, Amount: decimal.NewFromInt(50)}

	t.Run("Success", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("CreateTransfer", from, to,
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(50)) }),
			mock.MatchedBy(func(d shared.Date) bool { return d.Equal(date.Time) }),
			"Reserva").Return(out, in, nil)

		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transfers", map[string]interface{}{
			"conta_origem_id":  from,
			"conta_destino_id": to,
			"valor":            "50",
			"data":             "2024-06-03",
			"descricao":        "Reserva",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		var got TransferResponse
		decodeData(t, rr, &got)
		require.NotNil(t, got.Out)
		require.NotNil(t, got.In)
		assert.Equal(t, from, got.Out.AccountID)
		assert.Equal(t, to, got.In.AccountID)
	})

	t.Run("SameAccount", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("CreateTransfer", from, from, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, nil, transaction.ErrSameAccount)

		rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/transfers", map[string]interface{}{
			"conta_origem_id":  from,
			"conta_destino_id": from,
			"valor":            "50",
			"data":             "2024-06-03",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTransactionHandler_CreateRecurring(t *testing.T) {
	svc := new(MockTransactionService)
	group := uuid.New()
	series := []*transaction.Transaction{
		{Base: shared.Base{ID: uuid.New()}, RecurrenceID: &group},
		{Base: shared.Base{ID: uuid.New()}, RecurrenceID: &group, Forecast: true},
	}
	svc.On("CreateRecurring", mock.MatchedBy(func(tx *transaction.Transaction) bool {
		return tx.Description == "Aluguel"
	}), 2).Return(series, nil)

	rr := doJSON(setupTransactionRouter(svc), http.MethodPost, "/recurrences", map[string]interface{}{
		"conta_id":     uuid.New(),
		"categoria_id": uuid.New(),
		"data":         "2024-01-05",
		"valor":        "-1500",
		"tipo":         "despesa",
		"descricao":    "Aluguel",
		"ocorrencias":  2,
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got []transaction.Transaction
	decodeData(t, rr, &got)
	assert.Len(t, got, 2)
}

func TestTransactionHandler_DeleteRecurrence(t *testing.T) {
	group := uuid.New()

	t.Run("ForecastOnly", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("DeleteRecurrence", group, true).Return(4)

		rr := doJSON(setupTransactionRouter(svc), http.MethodDelete, "/recurrences/"+group.String()+"?forecast_only=true", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		var got RecurrenceDeletedResponse
		decodeData(t, rr, &got)
		assert.Equal(t, 4, got.Removed)
	})

	t.Run("InvalidFlag", func(t *testing.T) {
		svc := new(MockTransactionService)
		rr := doJSON(setupTransactionRouter(svc), http.MethodDelete, "/recurrences/"+group.String()+"?forecast_only=maybe", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "DeleteRecurrence", mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	svc := new(MockTransactionService)
	id := uuid.New()
	svc.On("DeleteTransaction", id).Return(nil)

	rr := doJSON(setupTransactionRouter(svc), http.MethodDelete, "/transactions/"+id.String(), nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	svc.AssertExpectations(t)
}
