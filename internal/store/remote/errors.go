package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind is the closed set of remote failure classes upper layers branch on.
type Kind string

const (
	KindTransient             Kind = "transient"
	KindConflictTargetMissing Kind = "conflict_target_missing"
	KindUnauthorized          Kind = "unauthorized"
	KindConstraint            Kind = "constraint"
	KindNotFound              Kind = "not_found"
	KindUnknown               Kind = "unknown"
)

// ErrAnonymous is returned when a remote operation is attempted without an identity.
var ErrAnonymous = errors.New("remote store requires an authenticated identity")

// Error is a remote failure decoded once at the adapter boundary.
type Error struct {
	Kind  Kind
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("remote %s failed (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("remote %s on %s failed (%s): %v", e.Op, e.Table, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, &Error{Kind: KindTransient}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or KindUnknown when err is not a remote error.
func KindOf(err error) Kind {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: classify(err), Op: op, Table: table, Err: err}
}

// classify maps driver errors onto Kind. SQLSTATE classes follow the
// PostgreSQL error code appendix.
func classify(err error) Kind {
	if errors.Is(err, ErrAnonymous) {
		return KindUnauthorized
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42P10":
			return KindConflictTargetMissing
		case pgErr.Code == "42501", strings.HasPrefix(pgErr.Code, "28"):
			return KindUnauthorized
		case strings.HasPrefix(pgErr.Code, "23"):
			return KindConstraint
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "53"),
			strings.HasPrefix(pgErr.Code, "57P"),
			pgErr.Code == "40001", pgErr.Code == "40P01":
			return KindTransient
		}
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	if pgconn.Timeout(err) {
		return KindTransient
	}
	return KindUnknown
}
