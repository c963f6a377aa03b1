package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var user = identity.Identity{UserID: "user-1"}

func newAccount(t *testing.T, name string, opening int64) *account.Account {
	t.Helper()
	a, err := account.NewAccount(name, decimal.NewFromInt(opening), shared.NewDate(2024, time.January, 1), "")
	require.NoError(t, err)
	return a
}

func TestRepository_AnonymousCarteiraScenario(t *testing.T) {
	ctx := context.Background()
	b, store, _ := anonymousBackends(t)
	repo := NewAccountRepository(b)

	carteira := repo.Create(newAccount(t, "Carteira", 100))
	require.NotEqual(t, uuid.Nil, carteira.ID)
	require.NoError(t, repo.Save(ctx, []*account.Account{carteira}))

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(store.Get(ctx, local.KeyAccounts, "")), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, carteira.ID.String(), docs[0]["id"])
	assert.Equal(t, "Carteira", docs[0]["nome"])
	assert.Equal(t, "100", docs[0]["saldo_inicial"])
	assert.Equal(t, "2024-01-01", docs[0]["data_saldo_inicial"])
}

func TestRepository_SaveGetAllIdempotentLocally(t *testing.T) {
	ctx := context.Background()
	b, store, _ := anonymousBackends(t)
	repo := New(AccountDescriptor, b)

	items := []*account.Account{
		repo.Create(newAccount(t, "Banco", 250)),
		repo.Create(newAccount(t, "Carteira", 100)),
	}
	require.NoError(t, repo.Save(ctx, items))
	first := store.Get(ctx, local.KeyAccounts, "")

	loaded, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.NoError(t, repo.Save(ctx, loaded))

	assert.JSONEq(t, first, store.Get(ctx, local.KeyAccounts, ""))
}

func TestRepository_SaveGetAllIdempotentRemotely(t *testing.T) {
	ctx := context.Background()
	b, rs, _ := remoteBackends(t, user)
	repo := New(AccountDescriptor, b)

	a := repo.Create(newAccount(t, "Banco", 250))
	doc, err := json.Marshal(a)
	require.NoError(t, err)

	rs.On("SelectAll", mock.Anything, remote.Accounts, user).
		Return([]json.RawMessage{doc}, nil).Once()

	var saved []remote.Row
	rs.On("UpsertMany", mock.Anything, remote.Accounts, user, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(3).([]remote.Row) }).
		Return(nil).Once()

	loaded, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, loaded))

	require.Len(t, saved, 1)
	roundTrip, err := json.Marshal(saved[0])
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(roundTrip))
}

func TestRepository_LocalCollectionCoercion(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name  string
		raw   string
		count int
	}{
		{"Missing", "", 0},
		{"NotAnArray", `{"id":"x"}`, 0},
		{"Corrupt", `[{"id":`, 0},
		{"NullEntriesDropped", `[null]`, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, store, _ := anonymousBackends(t)
			if tc.raw != "" {
				store.Set(ctx, local.KeyAccounts, tc.raw)
			}
			items, err := New(AccountDescriptor, b).GetAll(ctx)
			require.NoError(t, err)
			assert.NotNil(t, items)
			assert.Len(t, items, tc.count)
		})
	}
}

func TestRepository_RemoteLoadFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	b, rs, s := remoteBackends(t, user)
	repo := New(AccountDescriptor, b)

	cause := &remote.Error{Kind: remote.KindTransient, Op: "select", Table: "contas", Err: errors.New("connection reset")}
	rs.On("SelectAll", mock.Anything, remote.Accounts, user).Return(nil, cause).Once()

	items, err := repo.GetAll(ctx)
	require.Error(t, err)
	assert.True(t, remote.IsKind(err, remote.KindTransient))
	assert.Empty(t, items)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "accounts", events[0].Entity)
	assert.Equal(t, failure.OperationLoad, events[0].Operation)
	assert.Equal(t, failure.BackendRemote, events[0].Backend)
	assert.Equal(t, string(remote.KindTransient), events[0].Kind)
}

func TestRepository_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	b, rs, s := remoteBackends(t, user)
	repo := New(AccountDescriptor, b)

	cause := &remote.Error{Kind: remote.KindConstraint, Op: "upsert", Table: "contas", Err: errors.New("violates check")}
	rs.On("UpsertMany", mock.Anything, remote.Accounts, user, mock.Anything).Return(cause).Once()

	err := repo.Save(ctx, []*account.Account{repo.Create(newAccount(t, "Banco", 1))})
	require.Error(t, err)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, failure.OperationSave, events[0].Operation)
	assert.Equal(t, 1, events[0].Items)
	assert.Equal(t, "user-1", events[0].UserID)
}

func TestRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("AnonymousIsNoOp", func(t *testing.T) {
		b, _, _ := anonymousBackends(t)
		rs := b.Remote.(*MockRemoteStore)
		require.NoError(t, New(AccountDescriptor, b).Delete(ctx, uuid.New()))
		rs.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AuthenticatedDeletesRow", func(t *testing.T) {
		b, rs, _ := remoteBackends(t, user)
		id := uuid.New()
		rs.On("DeleteByID", mock.Anything, remote.Accounts, user, id).Return(nil).Once()
		require.NoError(t, New(AccountDescriptor, b).Delete(ctx, id))
	})
}

func TestRepository_CreateAndRevise(t *testing.T) {
	b, _, _ := anonymousBackends(t)
	repo := New(AccountDescriptor, b)

	prev := repo.Create(newAccount(t, "Banco", 100))
	assert.False(t, prev.CreatedAt.IsZero())
	assert.Equal(t, prev.CreatedAt, prev.UpdatedAt)

	next := newAccount(t, "Banco Novo", 999)
	next = repo.Revise(prev, next)

	assert.Equal(t, prev.ID, next.ID)
	assert.Equal(t, prev.CreatedAt, next.CreatedAt)
	assert.Equal(t, "Banco Novo", next.Name)
	assert.True(t, decimal.NewFromInt(100).Equal(next.OpeningBalance), "opening balance is preserved by generic updates")
}

func TestAccountRepository_UpdateOpeningValue(t *testing.T) {
	ctx := context.Background()
	date := shared.NewDate(2024, time.March, 15)

	t.Run("AnonymousSkipsRemote", func(t *testing.T) {
		b, _, _ := anonymousBackends(t)
		rs := b.Remote.(*MockRemoteStore)
		NewAccountRepository(b).UpdateOpeningValue(ctx, uuid.New(), decimal.NewFromInt(5), date)
		rs.AssertNotCalled(t, "UpdateColumns", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WritesNarrowColumns", func(t *testing.T) {
		b, rs, s := remoteBackends(t, user)
		id := uuid.New()
		rs.On("UpdateColumns", mock.Anything, remote.Accounts, user, id, map[string]any{
			"saldo_inicial":      "42.5",
			"data_saldo_inicial": "2024-03-15",
		}).Return(nil).Once()

		NewAccountRepository(b).UpdateOpeningValue(ctx, id, decimal.RequireFromString("42.5"), date)
		assert.Empty(t, s.Events())
	})

	t.Run("FailureIsSwallowedAndReported", func(t *testing.T) {
		b, rs, s := remoteBackends(t, user)
		id := uuid.New()
		rs.On("UpdateColumns", mock.Anything, remote.Accounts, user, id, mock.Anything).
			Return(&remote.Error{Kind: remote.KindNotFound, Op: "update", Table: "contas", Err: errors.New("no rows")}).Once()

		assert.NotPanics(t, func() {
			NewAccountRepository(b).UpdateOpeningValue(ctx, id, decimal.NewFromInt(1), date)
		})
		events := s.Events()
		require.Len(t, events, 1)
		assert.Equal(t, failure.OperationOpeningValue, events[0].Operation)
		assert.Equal(t, string(remote.KindNotFound), events[0].Kind)
	})
}
