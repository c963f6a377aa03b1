package workspace

import (
	"context"
	"sort"

	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/repository"
	"github.com/google/uuid"
)

// Categories returns the categories in display order.
func (w *Workspace) Categories() []*category.Category {
	all := w.categories.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Order < all[j].Order })
	return all
}

func (w *Workspace) Category(id uuid.UUID) (*category.Category, error) {
	c, ok := w.categories.Get(id)
	if !ok {
		return nil, shared.ErrNotFound{Entity: "category", ID: id}
	}
	return c, nil
}

// CreateCategory adds a user category. System categories are only seeded.
func (w *Workspace) CreateCategory(c *category.Category) (*category.Category, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c.System = false
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Order <= 0 {
		c.Order = w.nextCategoryOrder()
	}
	c = w.categoryRepo.Create(c)
	w.categories.Add(c)
	w.logger.Info("Category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

func (w *Workspace) UpdateCategory(id uuid.UUID, next *category.Category) (*category.Category, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, err := w.Category(id)
	if err != nil {
		return nil, err
	}
	next = w.categoryRepo.Revise(prev, next)
	if err := category.CheckUpdate(prev, next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	w.categories.Update(next)
	return next, nil
}

// DeleteCategory removes a category no transaction or purchase uses, along
// with its budgets.
func (w *Workspace) DeleteCategory(id uuid.UUID) (*shared.Violation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.Category(id); err != nil {
		return nil, err
	}
	if v := repository.ValidateCategoryDeletion(id, w.transactions.All(), w.purchases.All()); v != nil {
		w.logger.Info("Category deletion blocked", "category_id", id, "reason", v.Reason)
		return v, nil
	}

	var budgets []uuid.UUID
	for _, b := range w.budgetsOf(id) {
		budgets = append(budgets, b.ID)
	}
	w.budgets.Delete(budgets...)
	w.categories.Delete(id)
	w.logger.Info("Category deleted", "category_id", id, "budgets", len(budgets))
	return nil, nil
}

func (w *Workspace) nextCategoryOrder() int {
	next := 1
	for _, c := range w.categories.All() {
		if c.Order >= next {
			next = c.Order + 1
		}
	}
	return next
}

// seedCategories adds the system categories a freshly loaded identity lacks.
func (w *Workspace) seedCategories(_ context.Context, items []*category.Category) ([]*category.Category, bool) {
	missing := category.MissingSystem(items)
	if len(missing) == 0 {
		return items, false
	}
	for _, c := range missing {
		items = append(items, w.categoryRepo.Create(c))
	}
	w.logger.Info("Seeded system categories", "count", len(missing))
	return items, true
}

func (w *Workspace) budgetsOf(categoryID uuid.UUID) []*budget.CategoryBudget {
	var out []*budget.CategoryBudget
	for _, b := range w.budgets.All() {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	return out
}
