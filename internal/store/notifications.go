package store

import (
	"context"

	"marketplace-service/internal/models"
)

// InsertNotification appends an outbox row inside the transaction
func (t *storeTx) InsertNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, message, related_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return t.tx.GetContext(ctx, n, query, n.UserID, n.Type, n.Message, n.RelatedID)
}

// UnsentNotifications returns the oldest outbox rows not yet handed to the
// broker, up to limit.
func (s *Store) UnsentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE sent = FALSE ORDER BY id LIMIT $1", limit)
	return notifications, err
}

// MarkNotificationSent flags an outbox row as delivered to the broker
func (s *Store) MarkNotificationSent(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET sent = TRUE WHERE id = $1", id)
	return err
}
