package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

var errMissingOrderID = errors.New("order message without order_id")

// OrderHandler feeds kitchen_queue deliveries to the kitchen. A returned error
// sends the delivery to the dead-letter queue.
type OrderHandler struct {
	kitchen interfaces.KitchenService
	logger  logger.Logger
}

func NewOrderHandler(kitchen interfaces.KitchenService, logger logger.Logger) *OrderHandler {
	return &OrderHandler{
		kitchen: kitchen,
		logger:  logger,
	}
}

func (h *OrderHandler) HandleOrder(ctx context.Context, body []byte) error {
	var msg interfaces.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order message", "", nil, err)
		return fmt.Errorf("decode order message: %w", err)
	}
	if msg.OrderID <= 0 {
		h.logger.Error("message_invalid", "Order message rejected", "", map[string]interface{}{"body": string(body)}, errMissingOrderID)
		return errMissingOrderID
	}

	// Status changes made by the kitchen are logged under the order's id.
	ctx = logger.WithRequestID(ctx, fmt.Sprintf("order-%d", msg.OrderID))
	return h.kitchen.ProcessOrder(ctx, msg)
}
