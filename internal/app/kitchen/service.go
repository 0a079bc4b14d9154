package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type Service struct {
	ledger     interfaces.LedgerService
	logger     logger.Logger
	workerName string
	prepTime   time.Duration
}

func NewService(ledger interfaces.LedgerService, logger logger.Logger, workerName string, prepTime time.Duration) *Service {
	return &Service{
		ledger:     ledger,
		logger:     logger,
		workerName: workerName,
		prepTime:   prepTime,
	}
}

// ProcessOrder cooks a freshly placed order: received -> preparing -> ready.
// Both moves are guarded by the expected prior status, so an order the floor
// has moved on (paid, for instance) is left alone. An order redelivered while
// still preparing is finished.
func (s *Service) ProcessOrder(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	requestID := logger.RequestID(ctx)
	s.logger.Debug("order_processing_started", fmt.Sprintf("Processing order %d", msg.OrderID), requestID,
		map[string]interface{}{"order_id": msg.OrderID, "table_number": msg.TableNumber})

	err := s.ledger.AdvanceStatusFrom(ctx, msg.OrderID, domain.StatusReceived, string(domain.StatusPreparing), s.workerName)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Error("order_not_found", "Dropping message for unknown order", requestID,
			map[string]interface{}{"order_id": msg.OrderID}, err)
		return nil
	case errors.Is(err, domain.ErrStatusChanged):
		order, err := s.ledger.Detail(ctx, msg.OrderID)
		if err != nil {
			return err
		}
		if order.Status != domain.StatusPreparing {
			s.logger.Debug("order_skipped", "Order already handled", requestID,
				map[string]interface{}{"order_id": msg.OrderID, "status": order.Status})
			return nil
		}
	case err != nil:
		return fmt.Errorf("failed to start preparing order %d: %w", msg.OrderID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.prepTime):
	}

	err = s.ledger.AdvanceStatusFrom(ctx, msg.OrderID, domain.StatusPreparing, string(domain.StatusReady), s.workerName)
	if errors.Is(err, domain.ErrStatusChanged) {
		s.logger.Debug("order_skipped", "Order left preparing before it was ready", requestID,
			map[string]interface{}{"order_id": msg.OrderID})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to complete order %d: %w", msg.OrderID, err)
	}

	s.logger.Debug("order_completed", fmt.Sprintf("Order %d completed", msg.OrderID), requestID, nil)
	return nil
}
