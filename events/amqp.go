package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Dial opens the broker connection. An empty url disables forwarding and returns nil.
func Dial(url string, log *zap.Logger) (*amqp.Connection, error) {
	if url == "" {
		log.Warn("RABBITMQ_URL not set, events stay in-process")
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	log.Info("connected to rabbitmq")
	return conn, nil
}

// AMQPForwarder republishes bus events on a topic exchange, routed by event type.
type AMQPForwarder struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *zap.Logger
}

func NewAMQPForwarder(conn *amqp.Connection, exchange string, log *zap.Logger) (*AMQPForwarder, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPForwarder{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

func (f *AMQPForwarder) Handle(ctx context.Context, e Event) error {
	msg, err := Encode(e)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.channel.PublishWithContext(ctx, f.exchange, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	f.log.Debug("event forwarded", zap.String("event_type", string(e.Type)), zap.String("event_id", e.ID))
	return nil
}

// Close closes the channel and the underlying connection.
func (f *AMQPForwarder) Close() error {
	chErr := f.channel.Close()
	if err := f.conn.Close(); err != nil {
		return err
	}
	return chErr
}

// Encode builds the broker message for an event.
func Encode(e Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event %s: %w", e.Type, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         string(e.Type),
		Timestamp:    e.OccurredAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}, nil
}
