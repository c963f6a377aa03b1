// Package dataops implements the whole-dataset operations: export, import and
// the confirmed bulk delete.
package dataops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/carteira-sync/internal/domain/account"
	"github.com/carteira-sync/internal/domain/budget"
	"github.com/carteira-sync/internal/domain/card"
	"github.com/carteira-sync/internal/domain/category"
	"github.com/carteira-sync/internal/domain/transaction"
	"github.com/google/uuid"
)

var ErrImportNotSupported = errors.New("import is not yet supported")

const SnapshotVersion = 1

// Snapshot is the export document: every collection of one identity.
type Snapshot struct {
	Version      int                        `json:"version"`
	ExportedAt   time.Time                  `json:"exported_at"`
	UserID       string                     `json:"user_id,omitempty"`
	Accounts     []*account.Account         `json:"contas"`
	Categories   []*category.Category       `json:"categorias"`
	Transactions []*transaction.Transaction `json:"transacoes"`
	Cards        []*card.Card               `json:"cartoes"`
	Purchases    []*card.Purchase           `json:"compras"`
	Installments []*card.Installment        `json:"parcelas"`
	Budgets      []*budget.CategoryBudget   `json:"orcamentos"`
}

// SnapshotArchive keeps a copy of every export.
type SnapshotArchive interface {
	Store(ctx context.Context, userID string, exportedAt time.Time, document []byte) (string, error)
}

// Export builds the snapshot of the current identity and its JSON encoding.
// Archiving is best effort: a failed archive is logged and the export stands.
func (s *Service) Export(ctx context.Context) (*Snapshot, []byte, error) {
	id, err := s.resolver.Current(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	snap := &Snapshot{
		Version:      SnapshotVersion,
		ExportedAt:   s.now(),
		UserID:       id.UserID,
		Accounts:     s.workspace.Accounts(),
		Categories:   s.workspace.Categories(),
		Transactions: s.workspace.Transactions(),
		Cards:        s.workspace.Cards(),
		Purchases:    s.workspace.Purchases(),
		Installments: s.workspace.Installments(uuid.Nil),
		Budgets:      s.workspace.Budgets(""),
	}

	doc, err := json.Marshal(snap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if s.archive != nil {
		archiveID, err := s.archive.Store(ctx, id.UserID, snap.ExportedAt, doc)
		if err != nil {
			s.logger.Warn("Failed to archive snapshot", "user_id", id.UserID, "error", err)
		} else {
			s.logger.Info("Snapshot archived", "archive_id", archiveID, "bytes", len(doc))
		}
	}

	return snap, doc, nil
}

// Import is not available yet. The reader is left untouched.
func (s *Service) Import(_ context.Context, _ io.Reader) error {
	return ErrImportNotSupported
}
