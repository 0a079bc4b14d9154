package postgres

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type tableRepository struct {
	q Querier
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	err := r.q.QueryRow(ctx, queryInsertTable, table.Number, table.Status).Scan(&table.ID)
	return mapError("insert table", err, nil)
}

func (r *tableRepository) scanOne(ctx context.Context, op, query string, arg int) (*domain.Table, error) {
	var table domain.Table
	err := r.q.QueryRow(ctx, query, arg).Scan(&table.ID, &table.Number, &table.Status)
	if err != nil {
		return nil, mapError(op, err, domain.ErrTableNotFound)
	}
	return &table, nil
}

func (r *tableRepository) FindByNumber(ctx context.Context, number int) (*domain.Table, error) {
	return r.scanOne(ctx, "select table", querySelectTableByNumber, number)
}

func (r *tableRepository) LockByNumber(ctx context.Context, number int) (*domain.Table, error) {
	return r.scanOne(ctx, "lock table", queryLockTableByNumber, number)
}

func (r *tableRepository) LockByID(ctx context.Context, id int) (*domain.Table, error) {
	return r.scanOne(ctx, "lock table", queryLockTableByID, id)
}

func (r *tableRepository) SetStatus(ctx context.Context, id int, status domain.TableStatus) error {
	tag, err := r.q.Exec(ctx, queryUpdateTableStatus, id, status)
	if err != nil {
		return mapError("update table status", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}

func (r *tableRepository) Occupy(ctx context.Context, id int) error {
	tag, err := r.q.Exec(ctx, queryOccupyTable, id)
	if err != nil {
		return mapError("occupy table", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTableOccupied
	}
	return nil
}

func (r *tableRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.q.Exec(ctx, queryDeleteTable, id)
	if err != nil {
		return mapError("delete table", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTableNotFound
	}
	return nil
}

func (r *tableRepository) List(ctx context.Context) ([]*domain.Table, error) {
	rows, err := r.q.Query(ctx, querySelectTables)
	if err != nil {
		return nil, mapError("list tables", err, nil)
	}
	defer rows.Close()

	var tables []*domain.Table
	for rows.Next() {
		var table domain.Table
		if err := rows.Scan(&table.ID, &table.Number, &table.Status); err != nil {
			return nil, mapError("scan table", err, nil)
		}
		tables = append(tables, &table)
	}
	return tables, mapError("list tables", rows.Err(), nil)
}
