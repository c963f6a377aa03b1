package repository

import (
	"fmt"

	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/shared"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/google/uuid"
)

// ValidateAccountDeletion blocks deleting an account that a card settles from
// or that any transaction, transfer legs included, is booked against.
func ValidateAccountDeletion(accountID uuid.UUID, cards []*card.Card, transactions []*transaction.Transaction) *shared.Violation {
	n := 0
	for _, c := range cards {
		if c.SettlesFrom(accountID) {
			n++
		}
	}
	if n > 0 {
		return &shared.Violation{
			Entity:     "account",
			ID:         accountID.String(),
			Reason:     fmt.Sprintf("account is the default settlement account of %d card(s)", n),
			Dependency: "cards",
			Dependents: n,
		}
	}

	txs := 0
	for _, t := range transactions {
		if t.AccountID == accountID {
			txs++
		}
	}
	if txs > 0 {
		return &shared.Violation{
			Entity:     "account",
			ID:         accountID.String(),
			Reason:     fmt.Sprintf("account has %d transaction(s)", txs),
			Dependency: "transactions",
			Dependents: txs,
		}
	}
	return nil
}

// ValidateCategoryDeletion blocks deleting a category that any transaction or
// purchase still references.
func ValidateCategoryDeletion(categoryID uuid.UUID, transactions []*transaction.Transaction, purchases []*card.Purchase) *shared.Violation {
	txs := 0
	for _, t := range transactions {
		if t.ReferencesCategory(categoryID) {
			txs++
		}
	}
	if txs > 0 {
		return &shared.Violation{
			Entity:     "category",
			ID:         categoryID.String(),
			Reason:     fmt.Sprintf("category is used by %d transaction(s)", txs),
			Dependency: "transactions",
			Dependents: txs,
		}
	}

	ps := 0
	for _, p := range purchases {
		if p.CategoryID == categoryID {
			ps++
		}
	}
	if ps > 0 {
		return &shared.Violation{
			Entity:     "category",
			ID:         categoryID.String(),
			Reason:     fmt.Sprintf("category is used by %d card purchase(s)", ps),
			Dependency: "purchases",
			Dependents: ps,
		}
	}
	return nil
}

// ValidateCardDeletion blocks deleting a card with recorded purchases or with
// transactions booked on it.
func ValidateCardDeletion(cardID uuid.UUID, purchases []*card.Purchase, transactions []*transaction.Transaction) *shared.Violation {
	n := 0
	for _, p := range purchases {
		if p.CardID == cardID {
			n++
		}
	}
	if n > 0 {
		return &shared.Violation{
			Entity:     "card",
			ID:         cardID.String(),
			Reason:     fmt.Sprintf("card has %d purchase(s)", n),
			Dependency: "purchases",
			Dependents: n,
		}
	}

	txs := 0
	for _, t := range transactions {
		if t.CardID != nil && *t.CardID == cardID {
			txs++
		}
	}
	if txs > 0 {
		return &shared.Violation{
			Entity:     "card",
			ID:         cardID.String(),
			Reason:     fmt.Sprintf("card has %d transaction(s)", txs),
			Dependency: "transactions",
			Dependents: txs,
		}
	}
	return nil
}
