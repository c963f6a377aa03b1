// Package sink receives the persistence failures that the state layer absorbs
// instead of surfacing. Saves never fail their callers; a sink is how those
// failures stay observable.
package sink

import (
	"context"
	"time"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/google/uuid"
)

// PersistenceSink is told about every absorbed persistence failure.
// Implementations must not block for long.
type PersistenceSink interface {
	ReportFailure(ctx context.Context, event *failure.Event)
}

// NewEvent describes err for entity and op as seen by id.
func NewEvent(entity string, op failure.Operation, id identity.Identity, items int, err error) *failure.Event {
	backend := failure.BackendRemote
	if id.IsAnonymous() {
		backend = failure.BackendLocal
	}
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &failure.Event{
		EventID:    uuid.New(),
		Entity:     entity,
		Operation:  op,
		UserID:     id.UserID,
		Backend:    backend,
		Kind:       string(remote.KindOf(err)),
		Message:    message,
		Items:      items,
		OccurredAt: time.Now().UTC(),
	}
}

// Multi fans an event out to every sink in order.
type Multi []PersistenceSink

func (m Multi) ReportFailure(ctx context.Context, event *failure.Event) {
	for _, s := range m {
		if s != nil {
			s.ReportFailure(ctx, event)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) ReportFailure(context.Context, *failure.Event) {}
