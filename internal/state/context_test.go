package state

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/carteira-sync/internal/config"
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	resolver  identity.Resolver
	loadDelay time.Duration
	saveGate  chan struct{}

	mu          sync.Mutex
	baseline    []*account.Account
	loadErr     error
	loads       int
	loadedAt    time.Time
	saves       [][]*account.Account
	savedAt     []time.Time
	deleted     []uuid.UUID
	inFlight    int
	maxInFlight int
}

func newFakeRepo(baseline ...*account.Account) *fakeRepo {
	return &fakeRepo{resolver: identity.NewStatic(identity.Anonymous), baseline: baseline}
}

func (r *fakeRepo) Name() string { return "accounts" }
func (r *fakeRepo) Resolver() identity.Resolver { return r.resolver }

func (r *fakeRepo) GetAll(ctx context.Context) ([]*account.Account, error) {
	if r.loadDelay > 0 {
		time.Sleep(r.loadDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	r.loadedAt = time.Now()
	if r.loadErr != nil {
		return []*account.Account{}, r.loadErr
	}
	return append([]*account.Account(nil), r.baseline...), nil
}

func (r *fakeRepo) Save(ctx context.Context, items []*account.Account) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.mu.Unlock()

	if r.saveGate != nil {
		<-r.saveGate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight--
	r.saves = append(r.saves, items)
	r.savedAt = append(r.savedAt, time.Now())
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) Saves() [][]*account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*account.Account(nil), r.saves...)
}

func (r *fakeRepo) LastSave() []*account.Account {
	saves := r.Saves()
	if len(saves) == 0 {
		return nil
	}
	return saves[len(saves)-1]
}

func (r *fakeRepo) Deleted() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.deleted...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newWorkers(t *testing.T) *Workers {
	t.Helper()
	w, err := NewWorkers(config.WorkerPoolConfig{Size: 4}, testLogger())
	require.NoError(t, err)
	t.Cleanup(w.Shutdown)
	return w
}

func acct(name string) *account.Account {
	a := &account.Account{Name: name, Active: true}
	a.ID = uuid.New()
	return a
}

func ids(items []*account.Account) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestContext_MutationDuringSlowLoadIsSavedAfterLoad(t *testing.T) {
	ctx := context.Background()
	a, b := acct("Banco"), acct("Carteira")
	repo := newFakeRepo(a)
	repo.loadDelay = 100 * time.Millisecond
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())

	loadDone := make(chan error, 1)
	go func() { loadDone <- c.Load(ctx) }()

	time.Sleep(10 * time.Millisecond)
	c.Add(b)

	assert.Equal(t, Loading, c.Status())
	assert.Equal(t, []uuid.UUID{b.ID}, ids(c.All()), "mutation is visible immediately")
	assert.Empty(t, repo.Saves(), "nothing is persisted before the load completes")

	require.NoError(t, <-loadDone)
	require.NoError(t, c.Settle(ctx))

	assert.Equal(t, Loaded, c.Status())
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(c.All()))

	saves := repo.Saves()
	require.NotEmpty(t, saves)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(repo.LastSave()), "save never drops the loaded baseline")
	for _, at := range repo.savedAt {
		assert.False(t, at.Before(repo.loadedAt))
	}
}

func TestContext_DeleteDuringLoadReplaysOnBaseline(t *testing.T) {
	ctx := context.Background()
	a, b := acct("Banco"), acct("Carteira")
	repo := newFakeRepo(a, b)
	repo.loadDelay = 50 * time.Millisecond
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())

	loadDone := make(chan error, 1)
	go func() { loadDone <- c.Load(ctx) }()
	time.Sleep(10 * time.Millisecond)
	c.Delete(a.ID)

	require.NoError(t, <-loadDone)
	require.NoError(t, c.Settle(ctx))

	assert.Equal(t, []uuid.UUID{b.ID}, ids(c.All()))
	assert.Equal(t, []uuid.UUID{a.ID}, repo.Deleted())
	assert.Equal(t, []uuid.UUID{b.ID}, ids(repo.LastSave()))
}

func TestContext_Convergence(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
	require.NoError(t, c.Load(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			a := acct("Conta")
			c.Add(a)
			if i%2 == 0 {
				renamed := *a
				renamed.Name = "Renomeada"
				c.Update(&renamed)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, c.Settle(ctx))

	assert.Len(t, c.All(), 50)
	assert.ElementsMatch(t, ids(c.All()), ids(repo.LastSave()), "last persisted snapshot equals the cache")
	assert.Equal(t, 1, repo.maxInFlight, "saves of one context never overlap")
}

func TestContext_DeleteAndBulkReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete", func(t *testing.T) {
		a, b := acct("A"), acct("B")
		repo := newFakeRepo(a, b)
		c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
		require.NoError(t, c.Load(ctx))

		c.Delete(a.ID)
		require.NoError(t, c.Settle(ctx))

		assert.Equal(t, []uuid.UUID{a.ID}, repo.Deleted())
		assert.Equal(t, []uuid.UUID{b.ID}, ids(repo.LastSave()))
	})

	t.Run("BulkReplaceDeletesDroppedIDs", func(t *testing.T) {
		a, b, d := acct("A"), acct("B"), acct("D")
		repo := newFakeRepo(a, b)
		c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
		require.NoError(t, c.Load(ctx))

		c.BulkReplace([]*account.Account{b, d})
		require.NoError(t, c.Settle(ctx))

		assert.Equal(t, []uuid.UUID{a.ID}, repo.Deleted())
		assert.Equal(t, []uuid.UUID{b.ID, d.ID}, ids(repo.LastSave()))
	})

	t.Run("UpdateReplacesByID", func(t *testing.T) {
		a := acct("A")
		repo := newFakeRepo(a)
		c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
		require.NoError(t, c.Load(ctx))

		renamed := *a
		renamed.Name = "A2"
		c.Update(&renamed)
		require.NoError(t, c.Settle(ctx))

		got, ok := c.Get(a.ID)
		require.True(t, ok)
		assert.Equal(t, "A2", got.Name)
		assert.Equal(t, "A", a.Name, "the previous entity is not mutated")
		assert.Equal(t, "A2", repo.LastSave()[0].Name)
	})
}

func TestContext_LoadFailureDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(acct("A"))
	repo.loadErr = errors.New("connection refused")
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Settle(ctx))

	assert.Equal(t, Loaded, c.Status())
	assert.Empty(t, c.All())
	assert.Empty(t, repo.Saves(), "an empty load is never written back")
}

func TestContext_LoadIsOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(acct("A"))
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 1, repo.loads)
	assert.Empty(t, repo.Saves())
}

func TestContext_AfterLoadHook(t *testing.T) {
	ctx := context.Background()
	a, seeded := acct("A"), acct("Seeded")
	repo := newFakeRepo(a)
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger(),
		WithAfterLoad[*account.Account](func(_ context.Context, items []*account.Account) ([]*account.Account, bool) {
			return append(items, seeded), true
		}),
		WithTimeout[*account.Account](time.Second),
	)

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Settle(ctx))

	assert.Equal(t, []uuid.UUID{a.ID, seeded.ID}, ids(repo.LastSave()))
}

func TestContext_Reload(t *testing.T) {
	ctx := context.Background()
	a, b := acct("A"), acct("B")
	repo := newFakeRepo(a)
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
	require.NoError(t, c.Load(ctx))

	repo.mu.Lock()
	repo.baseline = []*account.Account{b}
	repo.mu.Unlock()

	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, []uuid.UUID{b.ID}, ids(c.All()))
	assert.Equal(t, 2, repo.loads)
}

func TestContext_SettleHonorsContext(t *testing.T) {
	repo := newFakeRepo()
	repo.saveGate = make(chan struct{})
	c := NewContext[*account.Account](repo, newWorkers(t), testLogger())
	require.NoError(t, c.Load(context.Background()))

	c.Add(acct("A"))

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Settle(short), context.DeadlineExceeded)

	close(repo.saveGate)
	require.NoError(t, c.Settle(context.Background()))
	assert.Len(t, repo.Saves(), 1)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "loaded", Loaded.String())
}
