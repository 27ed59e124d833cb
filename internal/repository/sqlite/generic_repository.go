package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"taskmaster/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

// entityMapping describes how an entity maps onto a single table keyed by an
// INTEGER PRIMARY KEY named id. columns excludes id.
type entityMapping[T any] struct {
	table   string
	columns []string
	values  func(entity *T) []any
	scan    func(row scanner) (*T, error)
	setID   func(entity *T, id int64)
}

// genericRepository implements repository.Repository for any mapped entity.
type genericRepository[T any] struct {
	db      *sql.DB
	mapping entityMapping[T]
}

func newGenericRepository[T any](db *sql.DB, mapping entityMapping[T]) *genericRepository[T] {
	return &genericRepository[T]{db: db, mapping: mapping}
}

var _ repository.Repository[struct{}] = (*genericRepository[struct{}])(nil)

func (r *genericRepository[T]) selectColumns() string {
	return "id, " + strings.Join(r.mapping.columns, ", ")
}

func (r *genericRepository[T]) Add(ctx context.Context, entity *T) (*T, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.mapping.columns)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		r.mapping.table, strings.Join(r.mapping.columns, ", "), placeholders)

	res, err := r.db.ExecContext(ctx, query, r.mapping.values(entity)...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", r.mapping.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s last insert id: %w", r.mapping.table, err)
	}
	r.mapping.setID(entity, id)
	return entity, nil
}

func (r *genericRepository[T]) GetByID(ctx context.Context, id int64) (*T, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id=?`, r.selectColumns(), r.mapping.table)
	entity, err := r.mapping.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scan %s: %w", r.mapping.table, err)
	}
	return entity, true, nil
}

func (r *genericRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id ASC`, r.selectColumns(), r.mapping.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.mapping.table, err)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := r.mapping.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.mapping.table, err)
		}
		entities = append(entities, *entity)
	}
	return entities, rows.Err()
}

func (r *genericRepository[T]) Update(ctx context.Context, id int64, entity *T) error {
	assignments := make([]string, len(r.mapping.columns))
	for i, column := range r.mapping.columns {
		assignments[i] = column + "=?"
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id=?`, r.mapping.table, strings.Join(assignments, ", "))

	args := append(r.mapping.values(entity), id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.mapping.table, err)
	}
	return requireAffected(res, r.mapping.table)
}

func (r *genericRepository[T]) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=?`, r.mapping.table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.mapping.table, err)
	}
	return requireAffected(res, r.mapping.table)
}

func requireAffected(res sql.Result, table string) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", table, err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
