package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the part of *amqp.Channel the sink publishes through
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpConn interface {
	Close() error
}

// AMQPSink publishes audit events to a topic exchange with the routing key
// "auction.<event type>"
type AMQPSink struct {
	exchange string

	mu      sync.Mutex
	conn    amqpConn
	channel amqpChannel
}

// NewAMQPSink dials url and declares a durable topic exchange
func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	utils.Info("Connected to RabbitMQ", map[string]any{"exchange": exchange})
	return newAMQPSink(exchange, conn, ch), nil
}

func newAMQPSink(exchange string, conn amqpConn, ch amqpChannel) *AMQPSink {
	return &AMQPSink{exchange: exchange, conn: conn, channel: ch}
}

// RoutingKey returns the routing key used for an event type
func RoutingKey(t model.EventType) string {
	return "auction." + string(t)
}

// Publish sends event as a persistent JSON message
func (s *AMQPSink) Publish(ctx context.Context, event model.AuctionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp sink: marshal event %s: %w", event.EventID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel == nil {
		return fmt.Errorf("amqp sink: %w", amqp.ErrClosed)
	}
	err = s.channel.PublishWithContext(ctx, s.exchange, RoutingKey(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp sink: publish event %s: %w", event.EventID, err)
	}
	return nil
}

// Close closes the channel and connection
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel == nil {
		return nil
	}
	chErr := s.channel.Close()
	connErr := s.conn.Close()
	s.channel, s.conn = nil, nil
	if chErr != nil {
		return fmt.Errorf("amqp sink: close channel: %w", chErr)
	}
	if connErr != nil {
		return fmt.Errorf("amqp sink: close connection: %w", connErr)
	}
	return nil
}
