package catalog

import (
	"context"
	"errors"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	"github.com/shopspring/decimal"
)

type Service struct {
	store  interfaces.Store
	logger logger.Logger
}

func NewService(store interfaces.Store, logger logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Add creates a menu item. Names are unique regardless of case.
func (s *Service) Add(ctx context.Context, cmd interfaces.AddMenuItemCommand) (int, error) {
	if err := domain.Validate(cmd); err != nil {
		return 0, err
	}
	item, err := domain.NewMenuItem(cmd.Name, cmd.Price)
	if err != nil {
		return 0, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		_, err := repos.Menu.FindByName(ctx, item.Name)
		switch {
		case err == nil:
			return domain.ErrDuplicateName
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return repos.Menu.Create(ctx, item)
	})
	if err != nil {
		s.logger.Error("menu_item_add_failed", "Failed to add menu item", logger.RequestID(ctx),
			map[string]interface{}{"name": item.Name}, err)
		return 0, err
	}

	s.logger.Debug("menu_item_added", "Menu item added", logger.RequestID(ctx),
		map[string]interface{}{"id": item.ID, "name": item.Name, "price": item.Price.StringFixed(2)})
	return item.ID, nil
}

func (s *Service) Reprice(ctx context.Context, itemID int, price decimal.Decimal) error {
	if err := domain.ValidatePrice(price); err != nil {
		return err
	}

	if err := s.store.Repositories().Menu.UpdatePrice(ctx, itemID, price.Round(2)); err != nil {
		s.logger.Error("menu_item_reprice_failed", "Failed to update price", logger.RequestID(ctx),
			map[string]interface{}{"id": itemID}, err)
		return err
	}

	s.logger.Debug("menu_item_repriced", "Menu item price updated", logger.RequestID(ctx),
		map[string]interface{}{"id": itemID, "price": price.StringFixed(2)})
	return nil
}

// Delete removes an item that no order line references.
func (s *Service) Delete(ctx context.Context, itemID int) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		if _, err := repos.Menu.FindByID(ctx, itemID); err != nil {
			return err
		}
		refs, err := repos.Menu.CountReferences(ctx, itemID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrInUse
		}
		return repos.Menu.Delete(ctx, itemID)
	})
	if err != nil {
		s.logger.Error("menu_item_delete_failed", "Failed to delete menu item", logger.RequestID(ctx),
			map[string]interface{}{"id": itemID}, err)
		return err
	}

	s.logger.Debug("menu_item_deleted", "Menu item deleted", logger.RequestID(ctx), map[string]interface{}{"id": itemID})
	return nil
}

func (s *Service) List(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.store.Repositories().Menu.List(ctx)
}
