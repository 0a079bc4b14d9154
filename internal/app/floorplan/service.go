package floorplan

import (
	"context"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
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

func (s *Service) Add(ctx context.Context, tableNumber int) (*domain.Table, error) {
	table, err := domain.NewTable(tableNumber)
	if err != nil {
		return nil, err
	}

	if err := s.store.Repositories().Tables.Create(ctx, table); err != nil {
		s.logger.Error("table_add_failed", "Failed to add table", logger.RequestID(ctx),
			map[string]interface{}{"table_number": tableNumber}, err)
		return nil, err
	}

	s.logger.Debug("table_added", "Table added", logger.RequestID(ctx),
		map[string]interface{}{"table_number": tableNumber})
	return table, nil
}

// Remove deletes an available table. Orders placed on it keep their history.
func (s *Service) Remove(ctx context.Context, tableNumber int) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		table, err := repos.Tables.LockByNumber(ctx, tableNumber)
		if err != nil {
			return err
		}
		if table.IsOccupied() {
			return domain.ErrTableOccupied
		}
		return repos.Tables.Delete(ctx, table.ID)
	})
	if err != nil {
		s.logger.Error("table_remove_failed", "Failed to remove table", logger.RequestID(ctx),
			map[string]interface{}{"table_number": tableNumber}, err)
		return err
	}

	s.logger.Debug("table_removed", "Table removed", logger.RequestID(ctx),
		map[string]interface{}{"table_number": tableNumber})
	return nil
}

// SetStatus overrides the occupancy flag without looking at orders.
func (s *Service) SetStatus(ctx context.Context, tableNumber int, status string) error {
	newStatus, err := domain.ParseTableStatus(status)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		table, err := repos.Tables.LockByNumber(ctx, tableNumber)
		if err != nil {
			return err
		}
		return repos.Tables.SetStatus(ctx, table.ID, newStatus)
	})
	if err != nil {
		s.logger.Error("table_status_failed", "Failed to set table status", logger.RequestID(ctx),
			map[string]interface{}{"table_number": tableNumber, "status": status}, err)
		return err
	}

	s.logger.Info("table_status_overridden", "Table status set manually", logger.RequestID(ctx),
		map[string]interface{}{"table_number": tableNumber, "status": newStatus})
	return nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Table, error) {
	return s.store.Repositories().Tables.List(ctx)
}
