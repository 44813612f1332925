package models

import "time"

// Event types
const (
	EventTypeNotificationCreated = "NOTIFICATION_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationEvent is published for every drained outbox row so the
// downstream delivery subsystem can fan it out to the recipient.
type NotificationEvent struct {
	BaseEvent
	NotificationID int64            `json:"notification_id"`
	RecipientID    int64            `json:"recipient_id"`
	Type           NotificationType `json:"type"`
	Message        string           `json:"message"`
	RelatedOrderID int64            `json:"related_order_id"`
}
