// Package remote talks to the relational backend that is the system of
// record for signed-in users. Every statement is scoped to the caller's
// user_id and every failure leaves the package as an *Error.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/carteira-sync/internal/domain/identity"
	"github.com/carteira-sync/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Row is one entity encoded with its column names as keys.
type Row map[string]any

// Store is the contract repositories depend on.
type Store interface {
	SelectAll(ctx context.Context, table Table, id identity.Identity) ([]json.RawMessage, error)
	UpsertMany(ctx context.Context, table Table, id identity.Identity, rows []Row) error
	DeleteByID(ctx context.Context, table Table, id identity.Identity, rowID uuid.UUID) error
	UpdateColumns(ctx context.Context, table Table, id identity.Identity, rowID uuid.UUID, values map[string]any) error
	CountRows(ctx context.Context, table Table, id identity.Identity) (int64, error)
	RPC(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

type PostgresStore struct {
	db     persistence.DB
	logger *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(logger *slog.Logger, db persistence.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.With("component", "remote_store"),
	}
}

func (s *PostgresStore) SelectAll(ctx context.Context, table Table, id identity.Identity) ([]json.RawMessage, error) {
	const op = "select"
	if id.IsAnonymous() {
		return nil, wrap(op, table.Name, ErrAnonymous)
	}

	rows, err := s.db.Query(ctx, table.selectSQL(), id.UserID)
	if err != nil {
		return nil, wrap(op, table.Name, err)
	}
	defer rows.Close()

	var result []json.RawMessage
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, wrap(op, table.Name, fmt.Errorf("failed to scan row: %w", err))
		}
		result = append(result, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, table.Name, err)
	}

	return result, nil
}

// UpsertMany writes rows in one statement keyed on the table's conflict key.
// When the backend lacks the unique constraint behind that key it falls back
// to deleting the same natural keys and inserting the batch in one
// transaction; an error from the fallback is returned as is.
func (s *PostgresStore) UpsertMany(ctx context.Context, table Table, id identity.Identity, rows []Row) error {
	const op = "upsert"
	if id.IsAnonymous() {
		return wrap(op, table.Name, ErrAnonymous)
	}
	if len(rows) == 0 {
		return nil
	}

	payload, err := encodeRows(rows)
	if err != nil {
		return &Error{Kind: KindUnknown, Op: op, Table: table.Name, Err: err}
	}

	_, err = s.db.Exec(ctx, table.upsertSQL(), id.UserID, payload)
	if err == nil {
		return nil
	}

	wrapped := wrap(op, table.Name, err)
	if !IsKind(wrapped, KindConflictTargetMissing) {
		return wrapped
	}

	s.logger.Warn("Conflict target missing on remote table, falling back to delete-then-insert",
		"table", table.Name,
		"conflict_key", strings.Join(table.ConflictKey, ","),
		"rows", len(rows),
	)

	if err := s.replaceScoped(ctx, table, id, rows, payload); err != nil {
		return wrap("upsert_fallback", table.Name, err)
	}
	return nil
}

func (s *PostgresStore) replaceScoped(ctx context.Context, table Table, id identity.Identity, rows []Row, payload string) error {
	groups, err := groupByScope(table, rows)
	if err != nil {
		return err
	}

	return persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		deleteSQL := table.scopedDeleteSQL()
		for _, g := range groups {
			args := make([]any, 0, len(g.scope)+2)
			args = append(args, id.UserID)
			for _, v := range g.scope {
				args = append(args, v)
			}
			args = append(args, g.keys)
			if _, err := tx.Exec(ctx, deleteSQL, args...); err != nil {
				return fmt.Errorf("failed to delete scoped rows: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, table.insertSQL(), id.UserID, payload); err != nil {
			return fmt.Errorf("failed to insert rows: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) DeleteByID(ctx context.Context, table Table, id identity.Identity, rowID uuid.UUID) error {
	const op = "delete"
	if id.IsAnonymous() {
		return wrap(op, table.Name, ErrAnonymous)
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND id = $2", table.Name)
	if _, err := s.db.Exec(ctx, sql, id.UserID, rowID); err != nil {
		return wrap(op, table.Name, err)
	}
	return nil
}

// UpdateColumns sets a narrow list of columns on one row, bypassing the
// upsert's insert-only rules.
func (s *PostgresStore) UpdateColumns(ctx context.Context, table Table, id identity.Identity, rowID uuid.UUID, values map[string]any) error {
	const op = "update"
	if id.IsAnonymous() {
		return wrap(op, table.Name, ErrAnonymous)
	}
	if len(values) == 0 {
		return nil
	}

	columns := make([]string, 0, len(values))
	for c := range values {
		if !table.HasColumn(c) || c == "id" {
			return &Error{Kind: KindUnknown, Op: op, Table: table.Name, Err: fmt.Errorf("unknown column %q", c)}
		}
		columns = append(columns, c)
	}
	sort.Strings(columns)

	sets := make([]string, len(columns))
	args := make([]any, 0, len(columns)+2)
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, values[c])
	}
	if table.HasColumn("updated_at") && values["updated_at"] == nil {
		sets = append(sets, "updated_at = NOW()")
	}
	args = append(args, id.UserID, rowID)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE user_id = $%d AND id = $%d",
		table.Name, strings.Join(sets, ", "), len(columns)+1, len(columns)+2)

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrap(op, table.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return &Error{Kind: KindNotFound, Op: op, Table: table.Name, Err: fmt.Errorf("row %s not found", rowID)}
	}
	return nil
}

func (s *PostgresStore) CountRows(ctx context.Context, table Table, id identity.Identity) (int64, error) {
	const op = "count"
	if id.IsAnonymous() {
		return 0, wrap(op, table.Name, ErrAnonymous)
	}

	var count int64
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE user_id = $1", table.Name)
	if err := s.db.QueryRow(ctx, sql, id.UserID).Scan(&count); err != nil {
		return 0, wrap(op, table.Name, err)
	}
	return count, nil
}

// RPC calls a server-side function with named arguments and returns its
// result as JSON.
func (s *PostgresStore) RPC(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	const op = "rpc"
	if !identifierPattern.MatchString(name) {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: fmt.Errorf("invalid function name %q", name)}
	}

	names := make([]string, 0, len(args))
	for n := range args {
		if !identifierPattern.MatchString(n) {
			return nil, &Error{Kind: KindUnknown, Op: op, Err: fmt.Errorf("invalid argument name %q", n)}
		}
		names = append(names, n)
	}
	sort.Strings(names)

	params := make([]string, len(names))
	values := make([]any, len(names))
	for i, n := range names {
		params[i] = fmt.Sprintf("%s => $%d", n, i+1)
		values[i] = args[n]
	}

	sql := fmt.Sprintf("SELECT COALESCE(to_jsonb(%s(%s))::text, 'null')", name, strings.Join(params, ", "))

	var result string
	if err := s.db.QueryRow(ctx, sql, values...).Scan(&result); err != nil {
		return nil, wrap(op, name, err)
	}
	return json.RawMessage(result), nil
}

type scopeGroup struct {
	scope []string
	keys  []string
}

// groupByScope partitions rows by their scope column values, preserving first-seen order.
func groupByScope(table Table, rows []Row) ([]*scopeGroup, error) {
	var groups []*scopeGroup
	index := make(map[string]*scopeGroup)

	for _, row := range rows {
		key, ok := row[table.KeyColumn]
		if !ok || key == nil {
			return nil, fmt.Errorf("row is missing key column %q", table.KeyColumn)
		}

		scope := make([]string, len(table.ScopeColumns))
		for i, c := range table.ScopeColumns {
			v, ok := row[c]
			if !ok || v == nil {
				return nil, fmt.Errorf("row is missing scope column %q", c)
			}
			scope[i] = fmt.Sprint(v)
		}

		groupKey := strings.Join(scope, "\x00")
		g, ok := index[groupKey]
		if !ok {
			g = &scopeGroup{scope: scope}
			index[groupKey] = g
			groups = append(groups, g)
		}
		g.keys = append(g.keys, fmt.Sprint(key))
	}
	return groups, nil
}

func encodeRows(rows []Row) (string, error) {
	clean := make([]Row, len(rows))
	for i, r := range rows {
		c := make(Row, len(r))
		for k, v := range r {
			if k != "user_id" {
				c[k] = v
			}
		}
		clean[i] = c
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("failed to encode rows: %w", err)
	}
	return string(b), nil
}
