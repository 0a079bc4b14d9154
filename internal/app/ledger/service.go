package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

const changedByLedger = "floor-service"

type Service struct {
	store     interfaces.Store
	publisher interfaces.EventPublisher
	logger    logger.Logger
	now       func() time.Time
	strict    bool
}

type Option func(*Service)

func WithPublisher(publisher interfaces.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithClock replaces time.Now as the source of order and status-log times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithStrictTransitions rejects status changes that do not move forward.
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

func NewService(store interfaces.Store, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: interfaces.NopPublisher{},
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder opens an order on an available table. The order, its lines and
// the occupancy flip commit together or not at all.
func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (int, error) {
	requestID := logger.RequestID(ctx)

	if err := domain.Validate(cmd); err != nil {
		s.logger.Debug("validation_failed", "Order validation failed", requestID,
			map[string]interface{}{"error": err.Error()})
		return 0, err
	}

	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		table, err := repos.Tables.LockByNumber(ctx, cmd.TableNumber)
		if err != nil {
			return err
		}
		if table.IsOccupied() {
			return domain.ErrTableOccupied
		}

		order = domain.NewOrder(table, s.now())
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		if err := repos.Orders.LogStatus(ctx, order.ID, order.Status, order.OrderTime); err != nil {
			return err
		}

		for _, req := range cmd.Items {
			if _, err := repos.Menu.FindByID(ctx, req.MenuItemID); err != nil {
				return fmt.Errorf("%w: id %d", err, req.MenuItemID)
			}
			line := &domain.OrderLine{OrderID: order.ID, MenuItemID: req.MenuItemID, Quantity: req.Quantity}
			if err := repos.Orders.AddLine(ctx, line); err != nil {
				return err
			}
		}

		return repos.Tables.Occupy(ctx, table.ID)
	})
	if err != nil {
		s.logger.Error("order_create_failed", "Failed to create order", requestID,
			map[string]interface{}{"table_number": cmd.TableNumber}, err)
		return 0, err
	}

	s.logger.Debug("order_received", "Order created", requestID,
		map[string]interface{}{"order_id": order.ID, "table_number": order.TableNumber})

	msg := interfaces.OrderPlacedMessage{
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Items:       cmd.Items,
		OrderTime:   order.OrderTime,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		// The order stays committed.
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish order", requestID,
			map[string]interface{}{"order_id": order.ID}, err)
	}

	return order.ID, nil
}

// AdvanceStatus sets the order status. Paying frees the table in the same
// transaction unless another unpaid order still sits at it; reopening a paid
// order occupies the table again.
func (s *Service) AdvanceStatus(ctx context.Context, orderID int, status string, changedBy string) error {
	return s.advance(ctx, orderID, "", status, changedBy)
}

// AdvanceStatusFrom is AdvanceStatus guarded by the expected current status.
// The check runs under the order's row lock; a mismatch fails with
// ErrStatusChanged and changes nothing.
func (s *Service) AdvanceStatusFrom(ctx context.Context, orderID int, from domain.OrderStatus, status string, changedBy string) error {
	return s.advance(ctx, orderID, from, status, changedBy)
}

func (s *Service) advance(ctx context.Context, orderID int, from domain.OrderStatus, status string, changedBy string) error {
	requestID := logger.RequestID(ctx)

	newStatus, err := domain.ParseOrderStatus(status)
	if err != nil {
		return err
	}
	if changedBy == "" {
		changedBy = changedByLedger
	}

	var (
		order         *domain.Order
		oldStatus     domain.OrderStatus
		tableReleased bool
		changedAt     = s.now()
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		tableReleased = false

		found, err := repos.Orders.LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		order = found
		oldStatus = order.Status

		if from != "" && oldStatus != from {
			return fmt.Errorf("%w: order %d is %s, expected %s", domain.ErrStatusChanged, order.ID, oldStatus, from)
		}
		if err := order.TransitionTo(newStatus, s.strict); err != nil {
			return fmt.Errorf("%w: %s -> %s", err, oldStatus, newStatus)
		}
		if err := repos.Orders.UpdateStatus(ctx, order.ID, newStatus); err != nil {
			return err
		}
		if err := repos.Orders.LogStatus(ctx, order.ID, newStatus, changedAt); err != nil {
			return err
		}

		// A removed table leaves nothing to release.
		if order.TableID == 0 {
			return nil
		}
		switch {
		case newStatus == domain.StatusPaid:
			// The table lock serializes payments of orders sharing it.
			if _, err := repos.Tables.LockByID(ctx, order.TableID); err != nil {
				return err
			}
			others, err := repos.Orders.CountActiveByTable(ctx, order.TableID, order.ID)
			if err != nil {
				return err
			}
			if others > 0 {
				return nil
			}
			if err := repos.Tables.SetStatus(ctx, order.TableID, domain.TableAvailable); err != nil {
				return err
			}
			tableReleased = true
		case oldStatus == domain.StatusPaid:
			if _, err := repos.Tables.LockByID(ctx, order.TableID); err != nil {
				return err
			}
			return repos.Tables.SetStatus(ctx, order.TableID, domain.TableOccupied)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("order_status_failed", "Failed to update order status", requestID,
			map[string]interface{}{"order_id": orderID, "status": status}, err)
		return err
	}

	s.logger.Debug("order_status_updated", fmt.Sprintf("Order %d: %s -> %s", orderID, oldStatus, newStatus), requestID,
		map[string]interface{}{"order_id": orderID, "table_released": tableReleased, "changed_by": changedBy})

	msg := interfaces.StatusChangedMessage{
		OrderID:       order.ID,
		TableNumber:   order.TableNumber,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		TableReleased: tableReleased,
		ChangedBy:     changedBy,
		Timestamp:     changedAt,
	}
	if err := s.publisher.PublishStatusChanged(ctx, msg); err != nil {
		s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", requestID,
			map[string]interface{}{"order_id": orderID}, err)
	}

	return nil
}

// Detail prices the order with current catalog prices.
func (s *Service) Detail(ctx context.Context, orderID int) (*domain.OrderDetail, error) {
	repos := s.store.Repositories()

	order, err := repos.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.Orders.Lines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return domain.NewOrderDetail(*order, lines), nil
}

// ActiveOrders lists unpaid orders, oldest first.
func (s *Service) ActiveOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.store.Repositories().Orders.ListActive(ctx)
}

func (s *Service) History(ctx context.Context, orderID int) ([]*domain.StatusChange, error) {
	repos := s.store.Repositories()
	if _, err := repos.Orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return repos.Orders.StatusHistory(ctx, orderID)
}
