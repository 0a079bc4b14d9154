package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn     Connection
	prefetch int
	logger   logger.Logger
}

func NewConsumer(conn Connection, prefetch int, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch, logger: logger}
}

func (c *consumer) ConsumeOrders(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.consumeLoop(ctx, "orders", func(ctx context.Context) error {
		return c.consumeOrders(ctx, handler)
	})
}

func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.MessageHandler) error {
	return c.consumeLoop(ctx, "notifications", func(ctx context.Context) error {
		return c.consumeNotifications(ctx, handler)
	})
}

// consumeLoop reruns consume until ctx is cancelled, waiting between attempts.
func (c *consumer) consumeLoop(ctx context.Context, name string, consume func(context.Context) error) error {
	for {
		err := consume(ctx)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", fmt.Sprintf("%s consumer disconnected, reconnecting in %s", name, reconnectDelay), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) consumeOrders(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	if err := declareOrders(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(KitchenQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			return channelClosed(err)

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			c.dispatch(ctx, handler, msg)
		}
	}
}

// dispatch acks handled messages and sends failed ones to the dead-letter
// queue. Work cut short by shutdown goes back to the queue instead.
func (c *consumer) dispatch(ctx context.Context, handler interfaces.MessageHandler, msg amqp.Delivery) {
	err := handler(ctx, msg.Body)
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		c.logger.Debug("message_requeued", "Shutdown interrupted message handling", "",
			map[string]interface{}{"routing_key": msg.RoutingKey})
		_ = msg.Nack(false, true)
		return
	}
	if err != nil {
		c.logger.Error("message_rejected", "Message sent to dead-letter queue", "",
			map[string]interface{}{"routing_key": msg.RoutingKey}, err)
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}

func (c *consumer) consumeNotifications(ctx context.Context, handler interfaces.MessageHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := declareNotifications(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", NotificationsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			return channelClosed(err)

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			// Notifications are auto-acked; a bad one is only logged by the handler.
			_ = handler(ctx, msg.Body)
		}
	}
}

func channelClosed(err *amqp.Error) error {
	if err != nil {
		return fmt.Errorf("channel closed: %w", err)
	}
	return fmt.Errorf("channel closed gracefully")
}
