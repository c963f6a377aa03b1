// Package identity answers "who is the current user" for every storage call.
// Repositories hold a Resolver and ask it again on each operation, so a
// sign-in or sign-out takes effect on the very next read or write.
package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidSession = errors.New("session is invalid or expired")
	ErrEmptyToken     = errors.New("session token cannot be empty")
	// ErrSessionExpired is returned by Current while a session that used to be
	// valid no longer verifies. It stays in effect until an explicit sign-out.
	ErrSessionExpired = errors.New("session expired, sign out to continue anonymously")
)

// Identity is the owner of remote rows. The zero value is the anonymous identity.
type Identity struct {
	UserID string `json:"user_id,omitempty"`
}

// Anonymous routes storage to the local store.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	return i.UserID
}

// Resolver reports the identity in effect at call time.
type Resolver interface {
	// Current resolves the identity now. An error means the backend could not
	// be chosen and the caller must not guess.
	Current(ctx context.Context) (Identity, error)
	// Settled is closed once the initial session check has completed.
	Settled() <-chan struct{}
}

// Static always resolves to the same identity and is settled from the start.
type Static struct {
	identity Identity
	settled  chan struct{}
}

func NewStatic(identity Identity) *Static {
	settled := make(chan struct{})
	close(settled)
	return &Static{identity: identity, settled: settled}
}

func (s *Static) Current(_ context.Context) (Identity, error) {
	return s.identity, nil
}

func (s *Static) Settled() <-chan struct{} {
	return s.settled
}

// WaitSettled blocks until r has settled or ctx is done.
func WaitSettled(ctx context.Context, r Resolver) error {
	select {
	case <-r.Settled():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
