// Package workspace composes the domain contexts of one process and enforces
// the rules that span more than one collection: referential checks before
// deletes, transfer pairs, installment plans and budget uniqueness.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/carteira-sync/internal/repository"
	"github.com/carteira-sync/internal/state"
)

var ErrMissingTransferCategory = errors.New("transfer category has not been seeded")

// lifecycle is the part of a context the workspace drives uniformly.
type lifecycle interface {
	Name() string
	Status() state.Status
	Len() int
	Load(ctx context.Context) error
	Reload(ctx context.Context) error
	Settle(ctx context.Context) error
}

// ContextStatus describes one context for health reporting.
type ContextStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Items  int    `json:"items"`
}

type Workspace struct {
	accounts     *state.Context[*account.Account]
	categories   *state.Context[*category.Category]
	transactions *state.Context[*transaction.Transaction]
	cards        *state.Context[*card.Card]
	purchases    *state.Context[*card.Purchase]
	installments *state.Context[*card.Installment]
	budgets      *state.Context[*budget.CategoryBudget]
	contexts     []lifecycle

	accountRepo     *repository.AccountRepository
	categoryRepo    *repository.Repository[*category.Category]
	transactionRepo *repository.Repository[*transaction.Transaction]
	cardRepo        *repository.Repository[*card.Card]
	purchaseRepo    *repository.Repository[*card.Purchase]
	installmentRepo *repository.Repository[*card.Installment]
	budgetRepo      *repository.Repository[*budget.CategoryBudget]

	// mu serializes operations that check one collection and change another.
	mu         sync.Mutex
	workers    *state.Workers
	timeout    time.Duration
	background sync.WaitGroup
	logger     *slog.Logger
}

// New wires one context per entity over the given backends. Nothing is
// loaded until Load is called.
func New(b repository.Backends, workers *state.Workers, timeout time.Duration) *Workspace {
	w := &Workspace{
		accountRepo:     repository.NewAccountRepository(b),
		categoryRepo:    repository.New(repository.CategoryDescriptor, b),
		transactionRepo: repository.New(repository.TransactionDescriptor, b),
		cardRepo:        repository.New(repository.CardDescriptor, b),
		purchaseRepo:    repository.New(repository.PurchaseDescriptor, b),
		installmentRepo: repository.New(repository.InstallmentDescriptor, b),
		budgetRepo:      repository.New(repository.BudgetDescriptor, b),
		workers:         workers,
		timeout:         timeout,
		logger:          b.Logger.With("component", "workspace"),
	}

	w.accounts = state.NewContext[*account.Account](w.accountRepo, workers, b.Logger, state.WithTimeout[*account.Account](timeout))
	w.categories = state.NewContext[*category.Category](w.categoryRepo, workers, b.Logger,
		state.WithTimeout[*category.Category](timeout),
		state.WithAfterLoad[*category.Category](w.seedCategories),
	)
	w.transactions = state.NewContext[*transaction.Transaction](w.transactionRepo, workers, b.Logger, state.WithTimeout[*transaction.Transaction](timeout))
	w.cards = state.NewContext[*card.Card](w.cardRepo, workers, b.Logger, state.WithTimeout[*card.Card](timeout))
	w.purchases = state.NewContext[*card.Purchase](w.purchaseRepo, workers, b.Logger, state.WithTimeout[*card.Purchase](timeout))
	w.installments = state.NewContext[*card.Installment](w.installmentRepo, workers, b.Logger, state.WithTimeout[*card.Installment](timeout))
	w.budgets = state.NewContext[*budget.CategoryBudget](w.budgetRepo, workers, b.Logger, state.WithTimeout[*budget.CategoryBudget](timeout))

	w.contexts = []lifecycle{w.accounts, w.categories, w.transactions, w.cards, w.purchases, w.installments, w.budgets}
	return w
}

// Load loads every context concurrently.
func (w *Workspace) Load(ctx context.Context) error {
	return w.each(ctx, func(ctx context.Context, c lifecycle) error { return c.Load(ctx) })
}

// Reload reloads every context, typically after sign-in or sign-out.
func (w *Workspace) Reload(ctx context.Context) error {
	if err := w.waitBackground(ctx); err != nil {
		return err
	}
	return w.each(ctx, func(ctx context.Context, c lifecycle) error { return c.Reload(ctx) })
}

// Settle waits for every pending save, including opening value updates.
func (w *Workspace) Settle(ctx context.Context) error {
	if err := w.waitBackground(ctx); err != nil {
		return err
	}
	return w.each(ctx, func(ctx context.Context, c lifecycle) error { return c.Settle(ctx) })
}

// Wipe settles pending saves, runs purge and reloads every context while
// holding the workspace lock. Mutations issued meanwhile wait for the reload
// and land on the emptied workspace.
func (w *Workspace) Wipe(ctx context.Context, purge func(ctx context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.Settle(ctx); err != nil {
		return fmt.Errorf("failed to settle pending saves: %w", err)
	}
	if err := purge(ctx); err != nil {
		return err
	}
	if err := w.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload after purge: %w", err)
	}
	return nil
}

func (w *Workspace) Status() []ContextStatus {
	out := make([]ContextStatus, 0, len(w.contexts))
	for _, c := range w.contexts {
		out = append(out, ContextStatus{Name: c.Name(), Status: c.Status().String(), Items: c.Len()})
	}
	return out
}

func (w *Workspace) each(ctx context.Context, fn func(context.Context, lifecycle) error) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, c := range w.contexts {
		wg.Add(1)
		go func(c lifecycle) {
			defer wg.Done()
			if err := fn(ctx, c); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// detached runs task on the worker pool under its own timeout, tracked by Settle.
func (w *Workspace) detached(task func(ctx context.Context)) {
	w.background.Add(1)
	w.workers.Submit(func() {
		defer w.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		task(ctx)
	})
}

func (w *Workspace) waitBackground(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
