package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"commscore/internal/infrastructure/events/port"
)

const defaultExchange = "commscore.events"

// AmqpPublisher implements port.Publisher over a RabbitMQ topic exchange.
// The routing key is the event type, so consumers can bind per event class.
type AmqpPublisher struct {
	conn     *amqp.Connection
	exchange string
}

var _ port.Publisher = (*AmqpPublisher)(nil)

// NewAmqpPublisherFromEnv dials AMQP_URL and declares the topic exchange.
func NewAmqpPublisherFromEnv() (*AmqpPublisher, error) {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		return nil, errors.New("amqp: AMQP_URL environment variable is not set")
	}
	exchange := os.Getenv("AMQP_EXCHANGE")
	if exchange == "" {
		exchange = defaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return &AmqpPublisher{conn: conn, exchange: exchange}, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, e port.Envelope) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
}

func (p *AmqpPublisher) Close() error {
	return p.conn.Close()
}

// NopPublisher drops events. Used when AMQP_URL is unset and in tests.
type NopPublisher struct{}

var _ port.Publisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, port.Envelope) error { return nil }
func (NopPublisher) Close() error                                 { return nil }
