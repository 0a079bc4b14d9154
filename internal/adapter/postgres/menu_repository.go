package postgres

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
)

type menuRepository struct {
	q Querier
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	err := r.q.QueryRow(ctx, queryInsertMenuItem, item.Name, item.Price).Scan(&item.ID)
	return mapError("insert menu item", err, nil)
}

func (r *menuRepository) FindByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.q.QueryRow(ctx, querySelectMenuItemByID, id).Scan(&item.ID, &item.Name, &item.Price)
	if err != nil {
		return nil, mapError("select menu item", err, domain.ErrMenuItemNotFound)
	}
	return &item, nil
}

func (r *menuRepository) FindByName(ctx context.Context, name string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.q.QueryRow(ctx, querySelectMenuItemByName, name).Scan(&item.ID, &item.Name, &item.Price)
	if err != nil {
		return nil, mapError("select menu item by name", err, domain.ErrMenuItemNotFound)
	}
	return &item, nil
}

func (r *menuRepository) UpdatePrice(ctx context.Context, id int, price decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, queryUpdateMenuItemPrice, id, price)
	if err != nil {
		return mapError("update menu item price", err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

func (r *menuRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.q.Exec(ctx, queryDeleteMenuItem, id)
	if err != nil {
		return mapError(opDeleteMenuItem, err, nil)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMenuItemNotFound
	}
	return nil
}

func (r *menuRepository) CountReferences(ctx context.Context, id int) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, queryCountMenuItemReferences, id).Scan(&count); err != nil {
		return 0, mapError("count menu item references", err, nil)
	}
	return count, nil
}

func (r *menuRepository) List(ctx context.Context) ([]*domain.MenuItem, error) {
	rows, err := r.q.Query(ctx, querySelectMenuItems)
	if err != nil {
		return nil, mapError("list menu items", err, nil)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, mapError("scan menu item", err, nil)
		}
		items = append(items, &item)
	}
	return items, mapError("list menu items", rows.Err(), nil)
}
