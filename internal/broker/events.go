package broker

import (
	"context"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/google/uuid"
)

// EventPublisher hands committed notifications to the delivery subsystem.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishNotification publishes a NotificationCreated event keyed by the
// related order so per-order delivery stays in order.
func (ep *EventPublisher) PublishNotification(ctx context.Context, n *models.Notification) error {
	event := &models.NotificationEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeNotificationCreated,
			Timestamp: time.Now(),
		},
		NotificationID: n.ID,
		RecipientID:    n.UserID,
		Type:           n.Type,
		Message:        n.Message,
		RelatedOrderID: n.RelatedID,
	}

	key := fmt.Sprintf("order-%d", n.RelatedID)
	return ep.producer.PublishEvent(ctx, key, event)
}
