// Package events publishes domain events to the message broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/videotube/videotube-api/internal/config"
	"github.com/videotube/videotube-api/pkg/logger"
	"go.uber.org/zap"
)

// Routing keys of the published events.
const (
	VideoPublished = "video.published"
	VideoDeleted   = "video.deleted"
	UserRegistered = "user.registered"
)

const confirmTimeout = 5 * time.Second

// Emitter sends events to subscribers of a routing key.
type Emitter interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// Publisher is an Emitter with a connection lifecycle.
type Publisher interface {
	Emitter
	IsHealthy() bool
	Close() error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data"`
}

func newEnvelope(routingKey string, payload interface{}) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
}

// RabbitPublisher publishes persistent JSON messages to a topic exchange and
// waits for the broker to confirm each one.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	confirms chan amqp.Confirmation
	config   config.RabbitMQConfig
	mu       sync.Mutex
}

// NewPublisher returns a RabbitPublisher when the broker is enabled and a
// NoopPublisher otherwise.
func NewPublisher(cfg config.RabbitMQConfig) (Publisher, error) {
	if !cfg.Enabled {
		logger.L().Info("RabbitMQ disabled, domain events are dropped")
		return NoopPublisher{}, nil
	}
	return NewRabbitPublisher(cfg)
}

// NewRabbitPublisher connects to the broker and declares the exchange.
func NewRabbitPublisher(cfg config.RabbitMQConfig) (*RabbitPublisher, error) {
	p := &RabbitPublisher{config: cfg}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	logger.L().Info("Connected to RabbitMQ",
		zap.String("exchange", p.config.Exchange),
	)

	return nil
}

// Publish sends payload under routingKey and waits for the broker confirm.
// Publishes are serialised so each confirm matches its message.
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil || p.channel.IsClosed() {
		return errors.New("channel is not open")
	}

	env := newEnvelope(routingKey, payload)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.config.Exchange, // exchange
		routingKey,        // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    env.OccurredAt,
			MessageId:    env.ID,
			Type:         routingKey,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm, ok := <-p.confirms:
		if !ok {
			return errors.New("channel closed before confirmation")
		}
		if !confirm.Ack {
			return errors.New("message was not acknowledged by broker")
		}
	case <-time.After(confirmTimeout):
		return errors.New("timeout waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.L().Debug("Published event to RabbitMQ",
		zap.String("eventId", env.ID),
		zap.String("routingKey", routingKey),
	)

	return nil
}

// Close closes the channel and connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil && !p.channel.IsClosed() {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %w", errors.Join(errs...))
	}

	logger.L().Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the connection and channel are open.
func (p *RabbitPublisher) IsHealthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish discards the event.
func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// IsHealthy always reports true.
func (NoopPublisher) IsHealthy() bool { return true }

// Close is a no-op.
func (NoopPublisher) Close() error { return nil }

// PublishAsync publishes in the background and only logs failures, so a broker
// outage never fails the request that produced the event.
func PublishAsync(p Emitter, routingKey string, payload interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*confirmTimeout)
		defer cancel()

		if err := p.Publish(ctx, routingKey, payload); err != nil {
			logger.L().Warn("Failed to publish event",
				zap.String("routingKey", routingKey),
				zap.Error(err),
			)
		}
	}()
}
