package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tripnest/backend/internal/domain"
)

// ExchangeName is the fanout exchange every API instance publishes to.
const ExchangeName = "trip_events"

const publishTimeout = 5 * time.Second

// RabbitBroker shares trip changes between API instances. Each instance
// binds an exclusive queue to the fanout exchange and replays what it
// receives into a local MemoryBroker, which owns the subscribers.
type RabbitBroker struct {
	log   *slog.Logger
	conn  *amqp.Connection
	local *MemoryBroker

	pubMu sync.Mutex
	pub   *amqp.Channel
	sub   *amqp.Channel

	done chan struct{}
}

// NewRabbitBroker dials url, declares the exchange and the instance queue,
// and starts consuming.
func NewRabbitBroker(url string, log *slog.Logger) (*RabbitBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: dial: %w", err)
	}
	b, err := newRabbitBroker(conn, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func newRabbitBroker(conn *amqp.Connection, log *slog.Logger) (*RabbitBroker, error) {
	pub, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: open publish channel: %w", err)
	}
	sub, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: open consume channel: %w", err)
	}

	if err := pub.ExchangeDeclare(
		ExchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: declare exchange: %w", err)
	}

	q, err := sub.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: declare queue: %w", err)
	}
	if err := sub.QueueBind(q.Name, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: bind queue: %w", err)
	}

	deliveries, err := sub.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return nil, fmt.Errorf("events.NewRabbitBroker: consume: %w", err)
	}

	b := &RabbitBroker{
		log:   log,
		conn:  conn,
		local: NewMemoryBroker(log),
		pub:   pub,
		sub:   sub,
		done:  make(chan struct{}),
	}
	go b.relay(deliveries)
	return b, nil
}

func (b *RabbitBroker) relay(deliveries <-chan amqp.Delivery) {
	defer close(b.done)
	for d := range deliveries {
		var change domain.TripChange
		if err := json.Unmarshal(d.Body, &change); err != nil {
			b.log.Error("discarding malformed trip change", "err", err)
			continue
		}
		_ = b.local.Publish(context.Background(), change)
	}
}

func (b *RabbitBroker) Publish(ctx context.Context, change domain.TripChange) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("events.RabbitBroker.Publish: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err = b.pub.PublishWithContext(ctx,
		ExchangeName, // exchange
		"",           // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   change.At,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("events.RabbitBroker.Publish: %w", err)
	}
	return nil
}

func (b *RabbitBroker) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan domain.TripChange, error) {
	return b.local.Subscribe(ctx, userID)
}

// Close tears down the AMQP connection, waits for the relay to drain and
// ends local subscriptions.
func (b *RabbitBroker) Close() error {
	err := b.conn.Close()
	<-b.done
	b.local.Close()
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("events.RabbitBroker.Close: %w", err)
	}
	return nil
}
