// Package postgres provides PostgreSQL implementations of the identity
// collaborators. Session tokens are never stored in clear; lookups go through
// their SHA-256 digest.
package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SessionVerifier implements identity.SessionVerifier over the auth_sessions table
type SessionVerifier struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewSessionVerifier(logger *slog.Logger, querier persistence.Querier) *SessionVerifier {
	return &SessionVerifier{
		querier: querier,
		logger:  logger,
	}
}

// Verify returns the user owning token. Unknown, revoked and expired tokens
// yield identity.ErrInvalidSession.
func (v *SessionVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", identity.ErrEmptyToken
	}

	query := `
		SELECT user_id::text
		FROM auth_sessions
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`

	var userID string
	err := v.querier.QueryRow(ctx, query, HashToken(token)).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", identity.ErrInvalidSession
		}
		v.logger.Error("Failed to verify session", "error", err)
		return "", fmt.Errorf("failed to verify session: %w", err)
	}

	return userID, nil
}

// HashToken is the digest a session token is stored under.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
