package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/domain/identity"
)

// SessionResolver is the mutable identity source the session service drives
type SessionResolver interface {
	Current(ctx context.Context) (identity.Identity, error)
	SignIn(ctx context.Context, token string) (identity.Identity, error)
	SignOut()
}

// Reloader flushes and reloads every context of the workspace
type Reloader interface {
	Settle(ctx context.Context) error
	Reload(ctx context.Context) error
}

// SessionServiceImpl implements the SessionService interface
type SessionServiceImpl struct {
	resolver  SessionResolver
	workspace Reloader
	logger    *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(logger *slog.Logger, resolver SessionResolver, workspace Reloader) SessionService {
	return &SessionServiceImpl{
		resolver:  resolver,
		workspace: workspace,
		logger:    logger,
	}
}

func (s *SessionServiceImpl) Current(ctx context.Context) (identity.Identity, error) {
	return s.resolver.Current(ctx)
}

// SignIn switches to the remote backend. Pending saves of the current
// identity are flushed first so they land in the store they were made for.
func (s *SessionServiceImpl) SignIn(ctx context.Context, token string) (identity.Identity, error) {
	if err := s.workspace.Settle(ctx); err != nil {
		s.logger.Warn("Pending saves did not settle before sign in", "error", err)
	}

	id, err := s.resolver.SignIn(ctx, token)
	if err != nil {
		return identity.Anonymous, err
	}

	if err := s.workspace.Reload(ctx); err != nil {
		return id, fmt.Errorf("failed to reload workspace after sign in: %w", err)
	}
	return id, nil
}

// SignOut switches back to the local backend and reloads from it.
func (s *SessionServiceImpl) SignOut(ctx context.Context) error {
	if err := s.workspace.Settle(ctx); err != nil {
		s.logger.Warn("Pending saves did not settle before sign out", "error", err)
	}

	s.resolver.SignOut()

	if err := s.workspace.Reload(ctx); err != nil {
		return fmt.Errorf("failed to reload workspace after sign out: %w", err)
	}
	return nil
}
