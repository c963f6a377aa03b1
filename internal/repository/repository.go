// Package repository mediates between the identity in effect and the two
// storage backends. Every operation resolves the identity again, so a sign-in
// or sign-out is honored from the next call on. Repositories hold no entity
// state; collections live in the state package.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/sink"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/google/uuid"
)

// Descriptor binds an entity type to its storage locations.
type Descriptor[E shared.Entity] struct {
	Name     string
	LocalKey string
	Table    remote.Table
	// Preserve copies onto next the fields a generic update must not change.
	Preserve func(prev, next E)
}

// Backends groups the collaborators shared by every repository.
type Backends struct {
	Resolver identity.Resolver
	Local    local.Store
	Remote   remote.Store
	Sink     sink.PersistenceSink
	Logger   *slog.Logger
}

type Repository[E shared.Entity] struct {
	desc     Descriptor[E]
	resolver identity.Resolver
	local    local.Store
	remote   remote.Store
	sink     sink.PersistenceSink
	logger   *slog.Logger
	now      func() time.Time
}

func New[E shared.Entity](desc Descriptor[E], b Backends) *Repository[E] {
	s := b.Sink
	if s == nil {
		s = sink.Discard{}
	}
	return &Repository[E]{
		desc:     desc,
		resolver: b.Resolver,
		local:    b.Local,
		remote:   b.Remote,
		sink:     s,
		logger:   b.Logger.With("entity", desc.Name),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository[E]) Name() string {
	return r.desc.Name
}

// Resolver exposes the identity resolver the repository consults.
func (r *Repository[E]) Resolver() identity.Resolver {
	return r.resolver
}

// GetAll loads the whole collection for the current identity. A failed load
// yields an empty collection together with the error; the failure has
// already been reported.
func (r *Repository[E]) GetAll(ctx context.Context) ([]E, error) {
	id, err := r.resolver.Current(ctx)
	if err != nil {
		r.fail(ctx, failure.OperationLoad, identity.Anonymous, 0, err)
		return []E{}, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if id.IsAnonymous() {
		return r.loadLocal(ctx), nil
	}

	docs, err := r.remote.SelectAll(ctx, r.desc.Table, id)
	if err != nil {
		r.fail(ctx, failure.OperationLoad, id, 0, err)
		return []E{}, fmt.Errorf("failed to load %s: %w", r.desc.Name, err)
	}

	items := make([]E, 0, len(docs))
	for _, doc := range docs {
		var item E
		if err := json.Unmarshal(doc, &item); err != nil {
			r.logger.Warn("Skipping undecodable remote row", "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository[E]) loadLocal(ctx context.Context) []E {
	raw := bytes.TrimSpace([]byte(r.local.Get(ctx, r.desc.LocalKey, "[]")))
	if len(raw) == 0 || raw[0] != '[' {
		r.logger.Warn("Local collection is not an array, using empty collection", "key", r.desc.LocalKey)
		return []E{}
	}

	var decoded []E
	if err := json.Unmarshal(raw, &decoded); err != nil {
		r.logger.Warn("Local collection is corrupt, using empty collection", "key", r.desc.LocalKey, "error", err)
		r.fail(ctx, failure.OperationLoad, identity.Anonymous, 0, err)
		return []E{}
	}

	items := make([]E, 0, len(decoded))
	for _, item := range decoded {
		if !isNil(item) {
			items = append(items, item)
		}
	}
	return items
}

// Save writes the full collection to the backend of the current identity.
// Remotely this is one batch upsert; rows absent from items are left alone.
func (r *Repository[E]) Save(ctx context.Context, items []E) error {
	id, err := r.resolver.Current(ctx)
	if err != nil {
		r.fail(ctx, failure.OperationSave, identity.Anonymous, len(items), err)
		return fmt.Errorf("failed to resolve identity: %w", err)
	}

	if id.IsAnonymous() {
		if items == nil {
			items = []E{}
		}
		doc, err := json.Marshal(items)
		if err != nil {
			r.fail(ctx, failure.OperationSave, id, len(items), err)
			return fmt.Errorf("failed to encode %s: %w", r.desc.Name, err)
		}
		r.local.Set(ctx, r.desc.LocalKey, string(doc))
		return nil
	}

	rows, err := toRows(items)
	if err != nil {
		r.fail(ctx, failure.OperationSave, id, len(items), err)
		return fmt.Errorf("failed to encode %s: %w", r.desc.Name, err)
	}
	if err := r.remote.UpsertMany(ctx, r.desc.Table, id, rows); err != nil {
		r.fail(ctx, failure.OperationSave, id, len(items), err)
		return fmt.Errorf("failed to save %s: %w", r.desc.Name, err)
	}
	return nil
}

// Create stamps a new entity with an id and timestamps. It does not persist.
func (r *Repository[E]) Create(item E) E {
	now := r.now()
	if item.GetID() == uuid.Nil {
		item.SetID(uuid.New())
	}
	item.SetCreatedAt(now)
	item.SetUpdatedAt(now)
	return item
}

// Update refreshes the update timestamp. It does not persist.
func (r *Repository[E]) Update(item E) E {
	item.SetUpdatedAt(r.now())
	return item
}

// Revise turns next into the successor of prev: identity, creation time and
// preserved fields come from prev.
func (r *Repository[E]) Revise(prev, next E) E {
	next.SetID(prev.GetID())
	next.SetCreatedAt(prev.GetCreatedAt())
	if r.desc.Preserve != nil {
		r.desc.Preserve(prev, next)
	}
	return r.Update(next)
}

// Delete removes one row remotely. Locally the next Save drops it.
func (r *Repository[E]) Delete(ctx context.Context, rowID uuid.UUID) error {
	id, err := r.resolver.Current(ctx)
	if err != nil {
		r.fail(ctx, failure.OperationDelete, identity.Anonymous, 1, err)
		return fmt.Errorf("failed to resolve identity: %w", err)
	}
	if id.IsAnonymous() {
		return nil
	}
	if err := r.remote.DeleteByID(ctx, r.desc.Table, id, rowID); err != nil {
		r.fail(ctx, failure.OperationDelete, id, 1, err)
		return fmt.Errorf("failed to delete %s %s: %w", r.desc.Name, rowID, err)
	}
	return nil
}

func (r *Repository[E]) fail(ctx context.Context, op failure.Operation, id identity.Identity, items int, err error) {
	r.sink.ReportFailure(ctx, sink.NewEvent(r.desc.Name, op, id, items, err))
}

func toRows[E any](items []E) ([]remote.Row, error) {
	rows := make([]remote.Row, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var row remote.Row
		if err := dec.Decode(&row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
