package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// SessionVerifier maps a session token to the user it belongs to.
// It returns ErrInvalidSession when the token is unknown or expired.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// SessionResolver holds the current session token and verifies it on every
// Current call. A token that stops verifying is kept: Current keeps failing
// with ErrSessionExpired until SignOut, so storage never switches backends
// behind the back of contexts loaded for the signed-in user.
type SessionResolver struct {
	verifier SessionVerifier
	logger   *slog.Logger

	mu    sync.RWMutex
	token string

	settled    chan struct{}
	settleOnce sync.Once
}

func NewSessionResolver(verifier SessionVerifier, logger *slog.Logger) *SessionResolver {
	return &SessionResolver{
		verifier: verifier,
		logger:   logger,
		settled:  make(chan struct{}),
	}
}

// Restore performs the startup session check and settles the resolver, whatever the outcome.
func (r *SessionResolver) Restore(ctx context.Context, token string) Identity {
	defer r.settle()

	if token == "" {
		r.logger.Info("No session to restore, continuing anonymously")
		return Anonymous
	}

	userID, err := r.verifier.Verify(ctx, token)
	if err != nil {
		r.logger.Warn("Failed to restore session, continuing anonymously", "error", err)
		return Anonymous
	}

	r.setToken(token)
	r.logger.Info("Session restored", "user_id", userID)
	return Identity{UserID: userID}
}

// SignIn verifies token and makes it the current session.
func (r *SessionResolver) SignIn(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Anonymous, ErrEmptyToken
	}

	userID, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return Anonymous, fmt.Errorf("failed to sign in: %w", err)
	}

	r.setToken(token)
	r.settle()
	r.logger.Info("Signed in", "user_id", userID)
	return Identity{UserID: userID}, nil
}

// SignOut drops the current session; subsequent calls resolve to Anonymous.
func (r *SessionResolver) SignOut() {
	r.setToken("")
	r.settle()
	r.logger.Info("Signed out")
}

func (r *SessionResolver) Current(ctx context.Context) (Identity, error) {
	r.mu.RLock()
	token := r.token
	r.mu.RUnlock()

	if token == "" {
		return Anonymous, nil
	}

	userID, err := r.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			r.logger.Warn("Session expired, storage is blocked until sign-out")
			return Anonymous, fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return Anonymous, fmt.Errorf("failed to verify session: %w", err)
	}

	return Identity{UserID: userID}, nil
}

func (r *SessionResolver) Settled() <-chan struct{} {
	return r.settled
}

func (r *SessionResolver) setToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func (r *SessionResolver) settle() {
	r.settleOnce.Do(func() { close(r.settled) })
}
