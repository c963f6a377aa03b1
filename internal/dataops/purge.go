package dataops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carteira-sync/internal/domain/failure"
	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/store/local"
	"github.com/carteira-sync/internal/store/remote"
	"github.com/google/uuid"
)

var ErrInvalidPurgeToken = errors.New("purge confirmation token is invalid or expired")

// PurgePreview lists what a purge would remove and the token that confirms it.
type PurgePreview struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Backend   string           `json:"backend"`
	Counts    map[string]int64 `json:"counts"`
	Total     int64            `json:"total"`
}

type purgeToken struct {
	userID    string
	expiresAt time.Time
}

// PreviewPurge counts the rows of the current identity and issues a single
// use confirmation token bound to it.
func (s *Service) PreviewPurge(ctx context.Context) (*PurgePreview, error) {
	id, err := s.resolver.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	counts, err := s.count(ctx, id)
	if err != nil {
		return nil, err
	}

	preview := &PurgePreview{
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.ttl),
		Backend:   backendOf(id),
		Counts:    counts,
	}
	for _, n := range counts {
		preview.Total += n
	}

	s.mu.Lock()
	s.expireLocked()
	s.tokens[preview.Token] = purgeToken{userID: id.UserID, expiresAt: preview.ExpiresAt}
	s.mu.Unlock()

	s.logger.Info("Purge previewed", "user_id", id.UserID, "total", preview.Total)
	return preview, nil
}

func (s *Service) count(ctx context.Context, id identity.Identity) (map[string]int64, error) {
	if id.IsAnonymous() {
		return map[string]int64{
			local.KeyAccounts:     int64(len(s.workspace.Accounts())),
			local.KeyCategories:   int64(len(s.workspace.Categories())),
			local.KeyTransactions: int64(len(s.workspace.Transactions())),
			local.KeyCards:        int64(len(s.workspace.Cards())),
			local.KeyPurchases:    int64(len(s.workspace.Purchases())),
			local.KeyInstallments: int64(len(s.workspace.Installments(uuid.Nil))),
			local.KeyBudgets:      int64(len(s.workspace.Budgets(""))),
		}, nil
	}

	counts := make(map[string]int64, len(remote.All))
	for _, table := range remote.All {
		n, err := s.remote.CountRows(ctx, table, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table.Name, err)
		}
		counts[table.Name] = n
	}
	return counts, nil
}

// Purge deletes every row of the current identity once token confirms it,
// then reloads the workspace. Workspace mutations are held off until the
// reload completes.
func (s *Service) Purge(ctx context.Context, token string) error {
	id, err := s.resolver.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve identity: %w", err)
	}

	s.mu.Lock()
	t, ok := s.tokens[token]
	delete(s.tokens, token)
	s.mu.Unlock()
	if !ok || t.userID != id.UserID || !s.now().Before(t.expiresAt) {
		return ErrInvalidPurgeToken
	}

	return s.workspace.Wipe(ctx, func(ctx context.Context) error {
		if id.IsAnonymous() {
			s.local.ClearAll(ctx)
		} else if _, err := s.remote.RPC(ctx, remote.PurgeFunction, map[string]any{"target_user_id": id.UserID}); err != nil {
			return fmt.Errorf("failed to purge user data: %w", err)
		}
		s.logger.Warn("User data purged", "user_id", id.UserID, "backend", backendOf(id))
		return nil
	})
}

func (s *Service) expireLocked() {
	now := s.now()
	for k, t := range s.tokens {
		if !now.Before(t.expiresAt) {
			delete(s.tokens, k)
		}
	}
}

func backendOf(id identity.Identity) string {
	if id.IsAnonymous() {
		return failure.BackendLocal
	}
	return failure.BackendRemote
}
