package sink

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/carteira-sync/internal/domain/failure"
)

// CountingSink keeps failure counters per entity and operation.
type CountingSink struct {
	total    atomic.Int64
	counters sync.Map // "entity/operation" -> *atomic.Int64
}

func NewCountingSink() *CountingSink {
	return &CountingSink{}
}

func (s *CountingSink) ReportFailure(_ context.Context, event *failure.Event) {
	s.total.Add(1)
	key := event.Entity + "/" + string(event.Operation)
	counter, _ := s.counters.LoadOrStore(key, new(atomic.Int64))
	counter.(*atomic.Int64).Add(1)
}

func (s *CountingSink) Total() int64 {
	return s.total.Load()
}

// Snapshot returns the current counters keyed by "entity/operation".
func (s *CountingSink) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	s.counters.Range(func(key, value any) bool {
		out[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return out
}
