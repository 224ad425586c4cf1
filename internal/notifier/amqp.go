package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/julianstephens/studyclock/internal/constants"
	"github.com/julianstephens/studyclock/internal/logger"
	"github.com/julianstephens/studyclock/internal/models"
)

// Publisher sends one message to a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
	Close() error
}

// TriggerMessage is the body published for arm and cancel requests.
type TriggerMessage struct {
	Identifier string          `json:"identifier"`
	Trigger    *models.Trigger `json:"trigger,omitempty"`
	RRule      string          `json:"rrule,omitempty"`
	SentAt     time.Time       `json:"sent_at"`
}

// AMQPArmer hands trigger requests to a push gateway over RabbitMQ.
type AMQPArmer struct {
	pub Publisher
	now func() time.Time
}

func NewAMQPArmer(pub Publisher) *AMQPArmer {
	return &AMQPArmer{pub: pub, now: time.Now}
}

func (a *AMQPArmer) publish(ctx context.Context, routingKey string, msg TriggerMessage) error {
	msg.SentAt = a.now()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding trigger message: %w", err)
	}
	return a.pub.Publish(ctx, routingKey, body)
}

func (a *AMQPArmer) Arm(ctx context.Context, t models.Trigger) error {
	return a.publish(ctx, constants.AMQPRoutingArm, TriggerMessage{
		Identifier: t.Identifier,
		Trigger:    &t,
		RRule:      RRuleString(t),
	})
}

func (a *AMQPArmer) Cancel(ctx context.Context, identifier string) error {
	return a.publish(ctx, constants.AMQPRoutingCancel, TriggerMessage{Identifier: identifier})
}

func (a *AMQPArmer) CancelAll(ctx context.Context) error {
	return a.publish(ctx, constants.AMQPRoutingCancelAll, TriggerMessage{})
}

func (a *AMQPArmer) Close() error {
	return a.pub.Close()
}

// RabbitMQPublisher publishes persistent JSON messages to a topic exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = constants.DefaultAMQPExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("RabbitMQ publisher connected", "exchange", exchange)
	return &RabbitMQPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		logger.Error("Failed to publish trigger message", "routing_key", routingKey, "error", err)
		return err
	}
	logger.Debug("Trigger message published", "routing_key", routingKey, "size", len(body))
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logger.Warn("Error closing channel", "error", err)
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
