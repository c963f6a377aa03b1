package remote

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Table describes how one entity maps onto its remote table. Every table
// carries a user_id column that scopes rows to their owner.
type Table struct {
	Name    string
	Columns []string // payload columns, user_id excluded
	OrderBy []string

	// ConflictKey is the ON CONFLICT target of batch upserts.
	ConflictKey []string
	// InsertOnly columns are written on insert and never overwritten by an upsert.
	InsertOnly []string

	// ScopeColumns and KeyColumn shape the delete-then-insert fallback: rows are
	// grouped by equal ScopeColumns values and deleted by KeyColumn IN (...).
	ScopeColumns []string
	KeyColumn    string
}

// Validate checks that every name is a plain SQL identifier and that the
// fallback and conflict columns are declared.
func (t Table) Validate() error {
	names := append([]string{t.Name}, t.Columns...)
	names = append(names, t.OrderBy...)
	for _, n := range names {
		if !identifierPattern.MatchString(n) {
			return fmt.Errorf("invalid identifier %q in table %s", n, t.Name)
		}
	}
	for _, c := range append(append(slices.Clone(t.ConflictKey), t.InsertOnly...), t.ScopeColumns...) {
		if c != "user_id" && !t.HasColumn(c) {
			return fmt.Errorf("column %q is not declared in table %s", c, t.Name)
		}
	}
	if !t.HasColumn(t.KeyColumn) {
		return fmt.Errorf("key column %q is not declared in table %s", t.KeyColumn, t.Name)
	}
	if len(t.ConflictKey) == 0 {
		return fmt.Errorf("table %s has no conflict key", t.Name)
	}
	return nil
}

func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

func (t Table) selectSQL() string {
	return fmt.Sprintf(
		"SELECT row_to_json(r)::text FROM (SELECT * FROM %s WHERE user_id = $1 ORDER BY %s) AS r",
		t.Name, strings.Join(t.OrderBy, ", "),
	)
}

func (t Table) insertSQL() string {
	selected := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		selected[i] = "r." + c
	}
	return fmt.Sprintf(
		"INSERT INTO %s (user_id, %s) SELECT $1, %s FROM json_populate_recordset(NULL::%s, $2::json) AS r",
		t.Name, strings.Join(t.Columns, ", "), strings.Join(selected, ", "), t.Name,
	)
}

// upsertSQL overwrites every non-key column on conflict. Tables keyed by a
// natural key also take the incoming id so later deletes by id still match.
func (t Table) upsertSQL() string {
	var updates []string
	for _, c := range t.Columns {
		if c == "created_at" || slices.Contains(t.ConflictKey, c) || slices.Contains(t.InsertOnly, c) {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	action := "DO NOTHING"
	if len(updates) > 0 {
		action = fmt.Sprintf("DO UPDATE SET %s WHERE %s.user_id = EXCLUDED.user_id", strings.Join(updates, ", "), t.Name)
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) %s", t.insertSQL(), strings.Join(t.ConflictKey, ", "), action)
}

// scopedDeleteSQL deletes the caller's rows matching every scope column and
// whose key column is in the $n text array.
func (t Table) scopedDeleteSQL() string {
	predicates := []string{"user_id = $1"}
	for i, c := range t.ScopeColumns {
		predicates = append(predicates, fmt.Sprintf("%s::text = $%d", c, i+2))
	}
	predicates = append(predicates, fmt.Sprintf("%s::text = ANY($%d::text[])", t.KeyColumn, len(t.ScopeColumns)+2))
	return fmt.Sprintf("DELETE FROM %s WHERE %s", t.Name, strings.Join(predicates, " AND "))
}
