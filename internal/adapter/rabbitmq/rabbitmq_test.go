package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  map[string]string
	bindings   map[string]string
	published  []published
	deliveries chan amqp.Delivery
	closed     chan *amqp.Error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges:  map[string]string{},
		bindings:   map[string]string{},
		deliveries: make(chan amqp.Delivery, 8),
		closed:     make(chan *amqp.Error, 1),
	}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges[name] = kind
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (Queue, error) {
	if name == "" {
		name = "amq.gen-test"
	}
	return Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings[name] = exchange + "/" + key
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error { return nil }
func (f *fakeChannel) Close() error                                           { return nil }
func (f *fakeChannel) NotifyClose() <-chan *amqp.Error                        { return f.closed }

type fakeConnection struct {
	ch *fakeChannel
}

func (c *fakeConnection) Channel() (Channel, error) { return c.ch, nil }
func (c *fakeConnection) Close() error              { return nil }

// acknowledger records how each delivery was settled.
type acknowledger struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue bool
	done    chan struct{}
}

func (a *acknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acked = append(a.acked, tag)
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacked = append(a.nacked, tag)
	a.requeue = a.requeue || requeue
	a.mu.Unlock()
	a.done <- struct{}{}
	return nil
}

func (a *acknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestPublisher_OrderPlaced(t *testing.T) {
	ch := newFakeChannel()
	pub := NewPublisher(&fakeConnection{ch: ch})

	msg := interfaces.OrderPlacedMessage{
		OrderID:     7,
		TableNumber: 3,
		Items:       []domain.OrderLineRequest{{MenuItemID: 1, Quantity: 2}},
		OrderTime:   time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
	if err := pub.PublishOrderPlaced(context.Background(), msg); err != nil {
		t.Fatalf("PublishOrderPlaced: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != OrdersExchange || got.key != "kitchen.table.3" {
		t.Errorf("published to %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("delivery mode = %d, want persistent", got.msg.DeliveryMode)
	}

	var decoded interfaces.OrderPlacedMessage
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil || decoded.OrderID != 7 || len(decoded.Items) != 1 {
		t.Errorf("body = %s (%v)", got.msg.Body, err)
	}

	if ch.exchanges[OrdersExchange] != "topic" || ch.exchanges[dlqExchange] != "direct" {
		t.Errorf("exchanges = %v", ch.exchanges)
	}
	if ch.bindings[KitchenQueue] != OrdersExchange+"/kitchen.#" {
		t.Errorf("kitchen binding = %q", ch.bindings[KitchenQueue])
	}
}

func TestPublisher_StatusChanged(t *testing.T) {
	ch := newFakeChannel()
	pub := NewPublisher(&fakeConnection{ch: ch})

	err := pub.PublishStatusChanged(context.Background(), interfaces.StatusChangedMessage{OrderID: 1, NewStatus: "paid"})
	if err != nil {
		t.Fatalf("PublishStatusChanged: %v", err)
	}
	if got := ch.published[0]; got.exchange != NotificationsExchange || got.key != "" {
		t.Fatalf("published to %s/%q", got.exchange, got.key)
	}
	if ch.exchanges[NotificationsExchange] != "fanout" {
		t.Fatalf("exchanges = %v", ch.exchanges)
	}
}

func TestConsumer_AcksAndDeadLetters(t *testing.T) {
	ch := newFakeChannel()
	c := NewConsumer(&fakeConnection{ch: ch}, 1, logger.Nop())
	ack := &acknowledger{done: make(chan struct{}, 2)}

	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("ok")}
	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("bad")}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ConsumeOrders(ctx, func(ctx context.Context, body []byte) error {
			if string(body) == "bad" {
				return errors.New("cannot handle")
			}
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-ack.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for deliveries to settle")
		}
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("ConsumeOrders returned %v, want context.Canceled", err)
	}

	ack.mu.Lock()
	defer ack.mu.Unlock()
	if len(ack.acked) != 1 || ack.acked[0] != 1 {
		t.Errorf("acked = %v, want [1]", ack.acked)
	}
	if len(ack.nacked) != 1 || ack.nacked[0] != 2 || ack.requeue {
		t.Errorf("nacked = %v requeue=%v, want [2] without requeue", ack.nacked, ack.requeue)
	}
}

func TestKitchenRoutingKey(t *testing.T) {
	if got := KitchenRoutingKey(12); got != "kitchen.table.12" {
		t.Fatalf("KitchenRoutingKey(12) = %q", got)
	}
}

func TestConsumer_RequeuesOnShutdown(t *testing.T) {
	ch := newFakeChannel()
	c := NewConsumer(&fakeConnection{ch: ch}, 1, logger.Nop())
	ack := &acknowledger{done: make(chan struct{}, 1)}

	ch.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("slow")}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ConsumeOrders(ctx, func(ctx context.Context, body []byte) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ack.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the delivery to settle")
	}
	<-errCh

	ack.mu.Lock()
	defer ack.mu.Unlock()
	if len(ack.nacked) != 1 || !ack.requeue || len(ack.acked) != 0 {
		t.Fatalf("nacked = %v requeue=%v acked=%v, want one requeued nack", ack.nacked, ack.requeue, ack.acked)
	}
}
