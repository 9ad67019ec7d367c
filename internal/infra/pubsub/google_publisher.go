package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gatehouse/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
)

// googlePubSubPublisher implements EventPublisher using Google Cloud Pub/Sub
type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher creates a new Google Pub/Sub publisher
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID string, logger *slog.Logger) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Check if topic exists using TopicAdminClient
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	publisher := client.Publisher(topicID)
	// Ordering keys keep per-user event order across the single topic.
	publisher.EnableMessageOrdering = true

	logger.Info("Google Pub/Sub publisher initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googlePubSubPublisher{
		client:    client,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *googlePubSubPublisher) PublishUserRegistered(ctx context.Context, event *service.UserRegisteredEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

// PublishUserDeleted publishes a user.deleted event.
func (p *googlePubSubPublisher) PublishUserDeleted(ctx context.Context, event *service.UserDeletedEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

// PublishUserRoleChanged publishes a user.role.changed event.
func (p *googlePubSubPublisher) PublishUserRoleChanged(ctx context.Context, event *service.UserRoleChangedEvent) error {
	return p.publish(ctx, event.EventType, event.EventID, event.UserID, event)
}

func (p *googlePubSubPublisher) publish(ctx context.Context, eventType, eventID, userID string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_id":   eventID,
			"event_type": eventType,
			"user_id":    userID,
		},
		OrderingKey: userID,
	}

	result := p.publisher.Publish(ctx, msg)

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	p.logger.Info("[GooglePubSub] Event published",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (p *googlePubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}
