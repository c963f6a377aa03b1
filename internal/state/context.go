// Package state holds the in-memory collections callers read and mutate.
// Mutations apply synchronously; persistence follows asynchronously on the
// shared worker pool and never rolls a mutation back. Each context saves its
// whole collection through one save loop, so the last mutation always wins.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
)

type Status int

const (
	Uninitialized Status = iota
	Loading
	Loaded
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "uninitialized"
	}
}

// Repository is what a context needs from its entity repository.
type Repository[E shared.Entity] interface {
	Name() string
	Resolver() identity.Resolver
	GetAll(ctx context.Context) ([]E, error)
	Save(ctx context.Context, items []E) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AfterLoadFunc may extend a successfully loaded collection. Returning true
// schedules a save of the result.
type AfterLoadFunc[E shared.Entity] func(ctx context.Context, items []E) ([]E, bool)

// mutation maps a collection to its successor and names the ids it removed.
type mutation[E shared.Entity] func(items []E) ([]E, []uuid.UUID)

type Context[E shared.Entity] struct {
	repo      Repository[E]
	workers   *Workers
	timeout   time.Duration
	afterLoad AfterLoadFunc[E]
	logger    *slog.Logger

	mu         sync.Mutex
	status     Status
	items      []E
	pending    []mutation[E]
	deletes    []uuid.UUID
	loaded     chan struct{}
	generation uint64
	dirty      bool
	saving     bool
	idle       chan struct{}
}

type Option[E shared.Entity] func(*Context[E])

// WithAfterLoad installs a hook run once per load, before queued mutations replay.
func WithAfterLoad[E shared.Entity](fn AfterLoadFunc[E]) Option[E] {
	return func(c *Context[E]) { c.afterLoad = fn }
}

// WithTimeout bounds a single detached save round.
func WithTimeout[E shared.Entity](d time.Duration) Option[E] {
	return func(c *Context[E]) { c.timeout = d }
}

func NewContext[E shared.Entity](repo Repository[E], workers *Workers, logger *slog.Logger, opts ...Option[E]) *Context[E] {
	c := &Context[E]{
		repo:    repo,
		workers: workers,
		timeout: 15 * time.Second,
		logger:  logger.With("context", repo.Name()),
		items:   []E{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context[E]) Name() string {
	return c.repo.Name()
}

func (c *Context[E]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Load fetches the collection once identity has settled. Mutations issued
// before the load completes are replayed on top of what was fetched. A failed
// fetch leaves the context loaded with an empty baseline. Concurrent callers
// wait for the load in progress.
func (c *Context[E]) Load(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case Loaded:
		c.mu.Unlock()
		return nil
	case Loading:
		done := c.loaded
		c.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.status = Loading
	c.loaded = make(chan struct{})
	generation := c.generation
	c.mu.Unlock()

	if err := identity.WaitSettled(ctx, c.repo.Resolver()); err != nil {
		c.mu.Lock()
		if c.generation == generation {
			c.status = Uninitialized
			close(c.loaded)
		}
		c.mu.Unlock()
		return fmt.Errorf("failed waiting for identity: %w", err)
	}

	changed := false
	items, err := c.repo.GetAll(ctx)
	if err != nil {
		c.logger.Warn("Load failed, continuing with an empty collection", "error", err)
		items = []E{}
	} else if c.afterLoad != nil {
		items, changed = c.afterLoad(ctx, items)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		c.logger.Debug("Discarding load superseded by a reload")
		return nil
	}

	replayed := len(c.pending)
	for _, m := range c.pending {
		var removed []uuid.UUID
		items, removed = m(items)
		c.deletes = append(c.deletes, removed...)
	}
	c.pending = nil
	c.items = items
	c.status = Loaded
	close(c.loaded)

	c.logger.Info("Collection loaded", "items", len(items), "replayed", replayed)

	if replayed > 0 || changed {
		c.scheduleLocked()
	}
	return nil
}

// Reload drops the collection and loads it again, typically after the
// identity changed. In-flight saves are allowed to finish first.
func (c *Context[E]) Reload(ctx context.Context) error {
	if err := c.Settle(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.generation++
	if c.status == Loading {
		close(c.loaded)
	}
	c.status = Uninitialized
	c.items = []E{}
	c.pending = nil
	c.deletes = nil
	c.dirty = false
	c.mu.Unlock()

	return c.Load(ctx)
}

// All returns a snapshot of the collection.
func (c *Context[E]) All() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]E, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Context[E]) Get(id uuid.UUID) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

func (c *Context[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Add appends items to the collection.
func (c *Context[E]) Add(items ...E) {
	if len(items) == 0 {
		return
	}
	added := append([]E(nil), items...)
	c.mutate(func(cur []E) ([]E, []uuid.UUID) {
		next := make([]E, 0, len(cur)+len(added))
		next = append(next, cur...)
		return append(next, added...), nil
	})
}

// Update replaces the entities sharing an id with the given ones. Unknown ids
// are ignored.
func (c *Context[E]) Update(items ...E) {
	if len(items) == 0 {
		return
	}
	byID := make(map[uuid.UUID]E, len(items))
	for _, item := range items {
		byID[item.GetID()] = item
	}
	c.mutate(func(cur []E) ([]E, []uuid.UUID) {
		next := make([]E, len(cur))
		for i, item := range cur {
			if repl, ok := byID[item.GetID()]; ok {
				next[i] = repl
			} else {
				next[i] = item
			}
		}
		return next, nil
	})
}

// Delete removes the entities with the given ids.
func (c *Context[E]) Delete(ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	removed := append([]uuid.UUID(nil), ids...)
	c.mutate(func(cur []E) ([]E, []uuid.UUID) {
		next := make([]E, 0, len(cur))
		for _, item := range cur {
			if _, ok := drop[item.GetID()]; !ok {
				next = append(next, item)
			}
		}
		return next, removed
	})
}

// BulkReplace swaps the whole collection. Entities absent from items are
// deleted from the backend.
func (c *Context[E]) BulkReplace(items []E) {
	replacement := append([]E{}, items...)
	keep := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range replacement {
		keep[item.GetID()] = struct{}{}
	}
	c.mutate(func(cur []E) ([]E, []uuid.UUID) {
		var removed []uuid.UUID
		for _, item := range cur {
			if _, ok := keep[item.GetID()]; !ok {
				removed = append(removed, item.GetID())
			}
		}
		return append([]E(nil), replacement...), removed
	})
}

func (c *Context[E]) mutate(m mutation[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, removed := m(c.items)
	c.items = next
	if c.status != Loaded {
		c.pending = append(c.pending, m)
		return
	}
	c.deletes = append(c.deletes, removed...)
	c.scheduleLocked()
}

// scheduleLocked marks the collection dirty and starts the save loop if it
// is not running. c.mu must be held.
func (c *Context[E]) scheduleLocked() {
	c.dirty = true
	if c.saving {
		return
	}
	c.saving = true
	c.idle = make(chan struct{})
	c.workers.Submit(c.runSaves)
}

// runSaves persists the latest snapshot until no mutation is outstanding.
func (c *Context[E]) runSaves() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Save loop panicked", "panic", r)
			c.mu.Lock()
			c.dirty = false
			c.stopLocked()
			c.mu.Unlock()
		}
	}()

	for {
		c.mu.Lock()
		if !c.dirty {
			c.stopLocked()
			c.mu.Unlock()
			return
		}
		c.dirty = false
		snapshot := append([]E(nil), c.items...)
		deletes := c.deletes
		c.deletes = nil
		c.mu.Unlock()

		c.persist(snapshot, deletes)
	}
}

func (c *Context[E]) stopLocked() {
	if c.saving {
		c.saving = false
		close(c.idle)
	}
}

func (c *Context[E]) persist(snapshot []E, deletes []uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	for _, id := range deletes {
		if err := c.repo.Delete(ctx, id); err != nil {
			c.logger.Warn("Delete not persisted", "id", id, "error", err)
		}
	}
	if err := c.repo.Save(ctx, snapshot); err != nil {
		c.logger.Warn("Save not persisted", "items", len(snapshot), "error", err)
		return
	}
	c.logger.Debug("Collection persisted", "items", len(snapshot), "deletes", len(deletes))
}

// Settle waits until no save is running or pending.
func (c *Context[E]) Settle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.saving {
			c.mu.Unlock()
			return nil
		}
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
