package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"gatehouse/internal/domain/service"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpPublisher implements EventPublisher over RabbitMQ. Each event type
// goes to a durable queue named after its topic; messages are persistent
// so they survive broker restarts.
type amqpPublisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger

	mu       sync.Mutex
	declared map[string]struct{}
}

// NewAMQPPublisher creates a new RabbitMQ publisher
func NewAMQPPublisher(url string, logger *slog.Logger) (service.EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()

		return nil, errors.Wrap(err, "amqp channel open")
	}

	logger.Info("AMQP publisher initialized")

	return &amqpPublisher{
		conn:     conn,
		ch:       ch,
		logger:   logger,
		declared: make(map[string]struct{}),
	}, nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *amqpPublisher) PublishUserRegistered(ctx context.Context, event *service.UserRegisteredEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

// PublishUserDeleted publishes a user.deleted event.
func (p *amqpPublisher) PublishUserDeleted(ctx context.Context, event *service.UserDeletedEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

// PublishUserRoleChanged publishes a user.role.changed event.
func (p *amqpPublisher) PublishUserRoleChanged(ctx context.Context, event *service.UserRoleChangedEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

func (p *amqpPublisher) publish(ctx context.Context, topic, eventID, userID string, event any) error {
	if err := p.ensureQueue(topic); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    eventID,
		Timestamp:    time.Now().UTC(),
		Headers: amqp.Table{
			"event_type": topic,
			"user_id":    userID,
		},
		Body: body,
	}

	// Default exchange with the queue name as routing key.
	if err := p.ch.PublishWithContext(ctx, "", topic, false, false, pub); err != nil {
		return errors.Wrap(err, "amqp publish")
	}

	p.logger.Info("[AMQP] Event published",
		slog.String("event_id", eventID),
		slog.String("event_type", topic),
	)

	return nil
}

// ensureQueue declares the durable queue for a topic once per process.
func (p *amqpPublisher) ensureQueue(topic string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.declared[topic]; ok {
		return nil
	}

	if _, err := p.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return errors.Wrapf(err, "amqp queue declare %s", topic)
	}

	p.declared[topic] = struct{}{}

	return nil
}

// Close releases the channel and connection.
func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return errors.WithStack(p.conn.Close())
	}

	return nil
}
