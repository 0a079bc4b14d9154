package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/domain"
)

// Сообщения RabbitMQ
type OrderPlacedMessage struct {
	OrderID     int                       `json:"order_id"`
	TableNumber int                       `json:"table_number"`
	Items       []domain.OrderLineRequest `json:"items"`
	OrderTime   time.Time                 `json:"order_time"`
}

type StatusChangedMessage struct {
	OrderID       int                `json:"order_id"`
	TableNumber   int                `json:"table_number"`
	OldStatus     domain.OrderStatus `json:"old_status"`
	NewStatus     domain.OrderStatus `json:"new_status"`
	TableReleased bool               `json:"table_released"`
	ChangedBy     string             `json:"changed_by"`
	Timestamp     time.Time          `json:"timestamp"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMessage) error
	PublishStatusChanged(ctx context.Context, msg StatusChangedMessage) error
}

type MessageConsumer interface {
	ConsumeOrders(ctx context.Context, handler MessageHandler) error
	ConsumeNotifications(ctx context.Context, handler MessageHandler) error
}

type MessageHandler func(ctx context.Context, body []byte) error

// NopPublisher drops every event. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlacedMessage) error {
	return nil
}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChangedMessage) error {
	return nil
}
