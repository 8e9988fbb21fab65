package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/storeledger/backoffice/internal/records"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindText
	kindMoney
	kindNullMoney
	kindInt
	kindBool
	kindTime
	kindDate
)

// field binds a domain field name to its backend column.
type field struct {
	alias    string
	column   string
	kind     fieldKind
	sortable bool
	filter   bool
	readOnly bool
}

func (f field) qualified() string {
	return f.alias + "." + f.column
}

func (f field) encode(name string, v any) (any, error) {
	bad := func() error {
		return fmt.Errorf("%w: field %s has unexpected type %T", records.ErrValidation, name, v)
	}
	switch f.kind {
	case kindString:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil
	case kindText:
		s, ok := v.(string)
		if !ok {
			return nil, bad()
		}
		return toText(s), nil
	case kindMoney, kindNullMoney:
		var amount float64
		switch n := v.(type) {
		case float64:
			amount = n
		case int:
			amount = float64(n)
		default:
			return nil, bad()
		}
		if f.kind == kindNullMoney {
			return decimal.NewNullDecimal(decimal.NewFromFloat(amount)), nil
		}
		return decimal.NewFromFloat(amount), nil
	case kindInt:
		switch n := v.(type) {
		case int:
			return int32(n), nil
		case int32:
			return n, nil
		default:
			return nil, bad()
		}
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, bad()
		}
		return b, nil
	case kindTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, bad()
		}
		return t, nil
	case kindDate:
		t, ok := v.(time.Time)
		if !ok {
			return nil, bad()
		}
		return toDate(t), nil
	}
	return nil, bad()
}

// collection is the generic bulk-read and mutate helper shared by every
// record kind. R is the backend row shape.
type collection[R any] struct {
	table       string
	alias       string
	selectSQL   string
	fromSQL     string
	dateField   string
	defaultSort string
	fields      map[string]field
}

func (c collection[R]) where(q records.ListQuery) (string, []any, error) {
	var conditions []string
	var args []any
	argPos := 1

	if c.dateField != "" {
		date := c.fields[c.dateField]
		if !q.From.IsZero() {
			conditions = append(conditions, fmt.Sprintf("%s >= $%d", date.qualified(), argPos))
			args = append(args, q.From)
			argPos++
		}
		if !q.To.IsZero() {
			conditions = append(conditions, fmt.Sprintf("%s <= $%d", date.qualified(), argPos))
			args = append(args, q.To)
			argPos++
		}
	}

	keys := make([]string, 0, len(q.Filters))
	for key := range q.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f, ok := c.fields[key]
		if !ok || !f.filter {
			return "", nil, fmt.Errorf("%w: cannot filter %s by %q", records.ErrValidation, c.table, key)
		}
		conditions = append(conditions, fmt.Sprintf("%s::text = $%d", f.qualified(), argPos))
		args = append(args, q.Filters[key])
		argPos++
	}

	if len(conditions) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

func (c collection[R]) orderBy(q records.ListQuery) (string, error) {
	key := q.SortBy
	if key == "" {
		key = c.defaultSort
	}
	f, ok := c.fields[key]
	if !ok || !f.sortable {
		return "", fmt.Errorf("%w: cannot sort %s by %q", records.ErrValidation, c.table, key)
	}
	dir := "DESC"
	if q.SortDir == records.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, %s.id %s", f.qualified(), dir, c.alias, dir), nil
}

func (c collection[R]) list(ctx context.Context, db DBTX, q records.ListQuery) ([]R, int, error) {
	q = q.Normalize()
	whereClause, args, err := c.where(q)
	if err != nil {
		return nil, 0, err
	}
	order, err := c.orderBy(q)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", c.fromSQL, whereClause)
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count %s: %w", c.table, err)
	}

	query := fmt.Sprintf("%s %s %s %s", c.selectSQL, c.fromSQL, whereClause, order)
	if q.Paginated() {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.PerPage, q.Offset())
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list %s: %w", c.table, err)
	}
	items, err := pgx.CollectRows(rows, scanRow[R])
	if err != nil {
		return nil, 0, fmt.Errorf("store: list %s: %w", c.table, err)
	}
	return items, total, nil
}

func (c collection[R]) get(ctx context.Context, db DBTX, id uuid.UUID) (R, error) {
	query := fmt.Sprintf("%s %s WHERE %s.id = $1", c.selectSQL, c.fromSQL, c.alias)
	rows, err := db.Query(ctx, query, id)
	if err != nil {
		var zero R
		return zero, fmt.Errorf("store: get %s: %w", c.table, err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, scanRow[R])
	if err != nil {
		return row, translate(err)
	}
	return row, nil
}

// assignments turns the patch keys owned by alias into SET clauses.
func (c collection[R]) assignments(alias string, patch records.Patch, argStart int) ([]string, []any, error) {
	var sets []string
	var args []any
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f, ok := c.fields[key]
		if !ok || f.readOnly {
			return nil, nil, fmt.Errorf("%w: field %q is not updatable", records.ErrValidation, key)
		}
		if f.alias != alias {
			continue
		}
		value, err := f.encode(key, patch[key])
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, argStart+len(args)))
		args = append(args, value)
	}
	return sets, args, nil
}

func (c collection[R]) update(ctx context.Context, db DBTX, id uuid.UUID, patch records.Patch) error {
	matched, err := c.updateIf(ctx, db, id, patch, nil)
	if err != nil {
		return err
	}
	if !matched {
		return records.ErrNotFound
	}
	return nil
}

// updateIf applies patch only while every guard field still holds its
// expected value. It reports whether a row matched.
func (c collection[R]) updateIf(ctx context.Context, db DBTX, id uuid.UUID, patch records.Patch, guard map[string]string) (bool, error) {
	query, args, err := c.updateQuery(id, patch, guard)
	if err != nil {
		return false, err
	}
	if query == "" {
		return true, nil
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("store: update %s: %w", c.table, translate(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (c collection[R]) updateQuery(id uuid.UUID, patch records.Patch, guard map[string]string) (string, []any, error) {
	sets, args, err := c.assignments(c.alias, patch, 1)
	if err != nil {
		return "", nil, err
	}
	if len(sets) == 0 {
		return "", nil, nil
	}
	args = append(args, id)
	conditions := []string{fmt.Sprintf("id = $%d", len(args))}

	keys := make([]string, 0, len(guard))
	for key := range guard {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f, ok := c.fields[key]
		if !ok || !f.filter || f.alias != c.alias {
			return "", nil, fmt.Errorf("%w: cannot guard %s by %q", records.ErrValidation, c.table, key)
		}
		args = append(args, guard[key])
		conditions = append(conditions, fmt.Sprintf("%s::text = $%d", f.column, len(args)))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", c.table, strings.Join(sets, ", "), strings.Join(conditions, " AND "))
	return query, args, nil
}

func (c collection[R]) delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.table), id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", c.table, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return records.ErrNotFound
	}
	return nil
}
