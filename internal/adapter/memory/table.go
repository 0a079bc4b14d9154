package memory

import (
	"context"
	"sort"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

type tableRepository struct {
	binding
}

func (r *tableRepository) Create(ctx context.Context, table *domain.Table) error {
	return r.do(ctx, func(st *state) error {
		for _, existing := range st.tables {
			if existing.Number == table.Number {
				return domain.ErrDuplicateTable
			}
		}
		table.ID = st.seq("tables")
		st.tables[table.ID] = *table
		return nil
	})
}

func (r *tableRepository) FindByNumber(ctx context.Context, number int) (*domain.Table, error) {
	var table *domain.Table
	err := r.do(ctx, func(st *state) error {
		for _, existing := range st.tables {
			if existing.Number == number {
				found := existing
				table = &found
				return nil
			}
		}
		return domain.ErrTableNotFound
	})
	return table, err
}

// LockByNumber is FindByNumber: transactions already hold the store mutex.
func (r *tableRepository) LockByNumber(ctx context.Context, number int) (*domain.Table, error) {
	return r.FindByNumber(ctx, number)
}

func (r *tableRepository) LockByID(ctx context.Context, id int) (*domain.Table, error) {
	var table domain.Table
	err := r.do(ctx, func(st *state) error {
		found, ok := st.tables[id]
		if !ok {
			return domain.ErrTableNotFound
		}
		table = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) SetStatus(ctx context.Context, id int, status domain.TableStatus) error {
	return r.do(ctx, func(st *state) error {
		table, ok := st.tables[id]
		if !ok {
			return domain.ErrTableNotFound
		}
		table.Status = status
		st.tables[id] = table
		return nil
	})
}

func (r *tableRepository) Occupy(ctx context.Context, id int) error {
	return r.do(ctx, func(st *state) error {
		table, ok := st.tables[id]
		if !ok {
			return domain.ErrTableNotFound
		}
		if table.Status != domain.TableAvailable {
			return domain.ErrTableOccupied
		}
		table.Status = domain.TableOccupied
		st.tables[id] = table
		return nil
	})
}

func (r *tableRepository) Delete(ctx context.Context, id int) error {
	return r.do(ctx, func(st *state) error {
		if _, ok := st.tables[id]; !ok {
			return domain.ErrTableNotFound
		}
		delete(st.tables, id)
		for orderID, order := range st.orders {
			if order.TableID == id {
				order.TableID = 0
				st.orders[orderID] = order
			}
		}
		return nil
	})
}

func (r *tableRepository) List(ctx context.Context) ([]*domain.Table, error) {
	var tables []*domain.Table
	err := r.do(ctx, func(st *state) error {
		for _, table := range st.tables {
			table := table
			tables = append(tables, &table)
		}
		return nil
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, err
}
