package state

import (
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/config"
	"github.com/panjf2000/ants/v2"
)

// Workers is the pool every context persists on. Contexts never block on it:
// a save loop is one task that drains its context and returns.
type Workers struct {
	pool   *ants.Pool
	logger *slog.Logger
}

func NewWorkers(cfg config.WorkerPoolConfig, logger *slog.Logger) (*Workers, error) {
	pool, err := ants.NewPool(cfg.Size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			logger.Error("Persistence task panicked", "panic", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Workers{pool: pool, logger: logger}, nil
}

// Submit runs task on the pool, or on its own goroutine when the pool is full
// or released, so a persistence request is never dropped and never blocks.
func (w *Workers) Submit(task func()) {
	if err := w.pool.Submit(task); err != nil {
		w.logger.Warn("Worker pool rejected persistence task, running it detached", "error", err)
		go task()
	}
}

// Shutdown releases the pool. Tasks already running finish.
func (w *Workers) Shutdown() {
	w.logger.Info("Shutting down worker pool", "running_workers", w.pool.Running())
	w.pool.Release()
}

func (w *Workers) Running() int {
	return w.pool.Running()
}

func (w *Workers) Capacity() int {
	return w.pool.Cap()
}
