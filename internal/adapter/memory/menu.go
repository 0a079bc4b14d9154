package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/YelzhanWeb/restaurant/internal/domain"

	"github.com/shopspring/decimal"
)

type menuRepository struct {
	binding
}

func (r *menuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	return r.do(ctx, func(st *state) error {
		for _, existing := range st.menu {
			if strings.EqualFold(existing.Name, item.Name) {
				return domain.ErrDuplicateName
			}
		}
		item.ID = st.seq("menu_items")
		st.menu[item.ID] = *item
		return nil
	})
}

func (r *menuRepository) FindByID(ctx context.Context, id int) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.do(ctx, func(st *state) error {
		found, ok := st.menu[id]
		if !ok {
			return domain.ErrMenuItemNotFound
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) FindByName(ctx context.Context, name string) (*domain.MenuItem, error) {
	var item *domain.MenuItem
	err := r.do(ctx, func(st *state) error {
		for _, existing := range st.menu {
			if strings.EqualFold(existing.Name, name) {
				found := existing
				item = &found
				return nil
			}
		}
		return domain.ErrMenuItemNotFound
	})
	return item, err
}

func (r *menuRepository) UpdatePrice(ctx context.Context, id int, price decimal.Decimal) error {
	return r.do(ctx, func(st *state) error {
		item, ok := st.menu[id]
		if !ok {
			return domain.ErrMenuItemNotFound
		}
		item.Price = price
		st.menu[id] = item
		return nil
	})
}

func (r *menuRepository) Delete(ctx context.Context, id int) error {
	return r.do(ctx, func(st *state) error {
		if _, ok := st.menu[id]; !ok {
			return domain.ErrMenuItemNotFound
		}
		for _, line := range st.lines {
			if line.MenuItemID == id {
				return domain.ErrInUse
			}
		}
		delete(st.menu, id)
		return nil
	})
}

func (r *menuRepository) CountReferences(ctx context.Context, id int) (int, error) {
	var count int
	err := r.do(ctx, func(st *state) error {
		for _, line := range st.lines {
			if line.MenuItemID == id {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *menuRepository) List(ctx context.Context) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	err := r.do(ctx, func(st *state) error {
		for _, item := range st.menu {
			item := item
			items = append(items, &item)
		}
		return nil
	})
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, err
}
