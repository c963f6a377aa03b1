package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/carteira-sync/internal/config"
	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/platform/persistence"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRemoteStore is a mock implementation of remote.Store
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) SelectAll(ctx context.Context, table remote.Table, id identity.Identity) ([]json.RawMessage, error) {
	args := m.Called(ctx, table, id)
	docs, _ := args.Get(0).([]json.RawMessage)
	return docs, args.Error(1)
}

func (m *MockRemoteStore) UpsertMany(ctx context.Context, table remote.Table, id identity.Identity, rows []remote.Row) error {
	args := m.Called(ctx, table, id, rows)
	return args.Error(0)
}

func (m *MockRemoteStore) DeleteByID(ctx context.Context, table remote.Table, id identity.Identity, rowID uuid.UUID) error {
	args := m.Called(ctx, table, id, rowID)
	return args.Error(0)
}

func (m *MockRemoteStore) UpdateColumns(ctx context.Context, table remote.Table, id identity.Identity, rowID uuid.UUID, values map[string]any) error {
	args := m.Called(ctx, table, id, rowID, values)
	return args.Error(0)
}

func (m *MockRemoteStore) CountRows(ctx context.Context, table remote.Table, id identity.Identity) (int64, error) {
	args := m.Called(ctx, table, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemoteStore) RPC(ctx context.Context, name string, params map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, name, params)
	doc, _ := args.Get(0).(json.RawMessage)
	return doc, args.Error(1)
}

// recordingSink keeps every reported failure.
type recordingSink struct {
	mu     sync.Mutex
	events []*failure.Event
}

func (s *recordingSink) ReportFailure(_ context.Context, e *failure.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) Events() []*failure.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*failure.Event(nil), s.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newLocalStore(t *testing.T) *local.SQLiteStore {
	t.Helper()
	db, err := persistence.NewSQLiteDB(context.Background(), testLogger(), &config.LocalStoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return local.NewSQLiteStore(db.DB(), testLogger())
}

func anonymousBackends(t *testing.T) (Backends, *local.SQLiteStore, *recordingSink) {
	store := newLocalStore(t)
	s := &recordingSink{}
	return Backends{
		Resolver: identity.NewStatic(identity.Anonymous),
		Local:    store,
		Remote:   &MockRemoteStore{},
		Sink:     s,
		Logger:   testLogger(),
	}, store, s
}

func remoteBackends(t *testing.T, user identity.Identity) (Backends, *MockRemoteStore, *recordingSink) {
	rs := &MockRemoteStore{}
	s := &recordingSink{}
	t.Cleanup(func() { rs.AssertExpectations(t) })
	return Backends{
		Resolver: identity.NewStatic(user),
		Local:    newLocalStore(t),
		Remote:   rs,
		Sink:     s,
		Logger:   testLogger(),
	}, rs, s
}
