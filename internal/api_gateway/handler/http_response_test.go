package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carteira-sync/internal/api_gateway/middleware"
	"github.com/carteira-sync/internal/dataops"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"NotFound", shared.ErrNotFound{Entity: "card", ID: uuid.New()}, http.StatusNotFound, "NOT_FOUND"},
		{"FailureEventNotFound", failure.ErrEventNotFound{EventID: uuid.New()}, http.StatusNotFound, "NOT_FOUND"},
		{"WrappedValidation", fmt.Errorf("failed to set budget: %w", budget.ErrNegativeAmount), http.StatusBadRequest, "BAD_REQUEST"},
		{"InvalidPeriod", fmt.Errorf("%w: %q", shared.ErrInvalidPeriod, "x"), http.StatusBadRequest, "BAD_REQUEST"},
		{"PurgeToken", dataops.ErrInvalidPurgeToken, http.StatusConflict, "CONFLICT"},
		{"Import", dataops.ErrImportNotSupported, http.StatusNotImplemented, "NOT_IMPLEMENTED"},
		{"Session", fmt.Errorf("failed to sign in: %w", identity.ErrInvalidSession), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"ExpiredSession", fmt.Errorf("failed to resolve identity: %w", fmt.Errorf("%w: %w", identity.ErrSessionExpired, identity.ErrInvalidSession)), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"RemoteUnauthorized", &remote.Error{Kind: remote.KindUnauthorized, Op: "rpc", Err: errors.New("jwt expired")}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"RemoteTransient", &remote.Error{Kind: remote.KindTransient, Op: "select", Table: "contas", Err: errors.New("timeout")}, http.StatusBadGateway, "REMOTE_UNAVAILABLE"},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Set(middleware.CorrelationIDKey, "corr-1")

			RespondError(c, testLogger(), tc.err)

			assert.Equal(t, tc.expectedCode, rr.Code)
			resp := decodeData(t, rr, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.expectedBody, resp.Error.Code)
			assert.Equal(t, "corr-1", resp.CorrelationID)
		})
	}
}

func TestRespondViolation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)

	RespondViolation(c, &shared.Violation{Entity: "card", ID: "x", Reason: "card has 2 purchase(s)", Dependency: "purchases", Dependents: 2})

	assert.Equal(t, http.StatusConflict, rr.Code)
	var got shared.Violation
	resp := decodeData(t, rr, &got)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "card x cannot be deleted: card has 2 purchase(s)", resp.Error.Message)
	assert.Equal(t, 2, got.Dependents)
}
