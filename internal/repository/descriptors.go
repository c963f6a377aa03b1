package repository

import (
	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
)

var (
	AccountDescriptor = Descriptor[*account.Account]{
		Name:     "accounts",
		LocalKey: local.KeyAccounts,
		Table:    remote.Accounts,
		Preserve: account.KeepOpeningValue,
	}

	CategoryDescriptor = Descriptor[*category.Category]{
		Name:     "categories",
		LocalKey: local.KeyCategories,
		Table:    remote.Categories,
		Preserve: func(prev, next *category.Category) {
			next.System = prev.System
		},
	}

	TransactionDescriptor = Descriptor[*transaction.Transaction]{
		Name:     "transactions",
		LocalKey: local.KeyTransactions,
		Table:    remote.Transactions,
	}

	CardDescriptor = Descriptor[*card.Card]{
		Name:     "cards",
		LocalKey: local.KeyCards,
		Table:    remote.Cards,
	}

	PurchaseDescriptor = Descriptor[*card.Purchase]{
		Name:     "purchases",
		LocalKey: local.KeyPurchases,
		Table:    remote.Purchases,
	}

	InstallmentDescriptor = Descriptor[*card.Installment]{
		Name:     "installments",
		LocalKey: local.KeyInstallments,
		Table:    remote.Installments,
	}

	BudgetDescriptor = Descriptor[*budget.CategoryBudget]{
		Name:     "budgets",
		LocalKey: local.KeyBudgets,
		Table:    remote.Budgets,
	}
)
