package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// placeholders renders "(?, ?), (?, ?)" for a multi-row VALUES clause.
func placeholders(rows, cols int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", cols), ", ") + ")"
	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}

// forEachBatch calls fn with [lo, hi) bounds covering n items.
func forEachBatch(n, size int, fn func(lo, hi int) error) error {
	if size <= 0 {
		size = BulkBatchSize
	}
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// getOrCreate inserts arg only when no row answers existsQuery for id.
// Existing rows are never touched.
func getOrCreate(ctx context.Context, q sqlx.ExtContext, existsQuery string, id int64, insertQuery string, arg any) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, q, &one, q.Rebind(existsQuery), id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if _, err := sqlx.NamedExecContext(ctx, q, insertQuery, arg); err != nil {
		return false, err
	}
	return true, nil
}

type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// contains adds a case-insensitive substring match on column.
func (w *where) contains(column, value string) {
	if value == "" {
		return
	}
	w.add("LOWER("+column+") LIKE ?", "%"+strings.ToLower(value)+"%")
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func pageBounds(page, size int) (limit, offset, current int) {
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size, page
}

// listPage runs a count plus a LIMIT/OFFSET select sharing the same filter.
func listPage[T any](ctx context.Context, q sqlx.ExtContext, countQuery, selectQuery, orderBy string, w *where, page, size int) (Page[T], error) {
	limit, offset, current := pageBounds(page, size)
	result := Page[T]{Items: []T{}, Page: current, PageSize: size}

	if err := sqlx.GetContext(ctx, q, &result.Total, q.Rebind(countQuery+w.String()), w.args...); err != nil {
		return result, err
	}

	args := append(append([]any{}, w.args...), limit, offset)
	query := selectQuery + w.String() + " ORDER BY " + orderBy + " LIMIT ? OFFSET ?"
	if err := sqlx.SelectContext(ctx, q, &result.Items, q.Rebind(query), args...); err != nil {
		return result, err
	}
	return result, nil
}
