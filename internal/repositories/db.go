package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"vregistry/internal/models"
)

// ErrReferenceMissing означает нарушение внешнего ключа (user_id / vehicle_id указывает в никуда).
var ErrReferenceMissing = errors.New("referenced row does not exist")

const pqForeignKeyViolation = "23503"

// mapWriteErr converts driver errors of INSERT/UPDATE into package errors.
func mapWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
		return fmt.Errorf("%s: %w: %s", op, ErrReferenceMissing, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// listSpec describes one entity's list query: what to select, where to
// search and which columns may be used for ordering.
type listSpec struct {
	columns    string
	from       string
	idColumn   string
	searchCols []string
	orderCols  map[string]string
}

// buildListQuery returns the count query, the page query and the shared args.
// The page query uses two extra args (limit, offset) appended by the caller.
func buildListQuery(spec listSpec, f models.ListFilter) (countQ, pageQ string, args []any) {
	var where string
	if f.Search != "" && len(spec.searchCols) > 0 {
		args = append(args, "%"+escapeLike(strings.ToLower(f.Search))+"%")
		conds := make([]string, 0, len(spec.searchCols))
		for _, col := range spec.searchCols {
			conds = append(conds, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE $1", col))
		}
		where = " WHERE (" + strings.Join(conds, " OR ") + ")"
	}

	orderCol, ok := spec.orderCols[f.OrderBy]
	if !ok {
		orderCol = spec.idColumn
	}
	dir := "DESC"
	if f.OrderDirection == "asc" {
		dir = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s", orderCol, dir)
	if orderCol != spec.idColumn {
		order += fmt.Sprintf(", %s %s", spec.idColumn, dir)
	}

	countQ = "SELECT COUNT(*) FROM " + spec.from + where
	pageQ = fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		spec.columns, spec.from, where, order, len(args)+1, len(args)+2)
	return countQ, pageQ, args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// paginate runs the count and page queries of spec and scans every row.
func paginate[T any](ctx context.Context, db *sql.DB, spec listSpec, f models.ListFilter, scan func(rowScanner) (T, error)) (*models.Page[T], error) {
	f = f.Normalize()
	countQ, pageQ, args := buildListQuery(spec, f)

	var total int
	if err := db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	rows, err := db.QueryContext(ctx, pageQ, append(args, f.Size, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return models.NewPage(items, total, f), nil
}

// affectedOrNotFound turns "0 rows affected" into sql.ErrNoRows.
func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
