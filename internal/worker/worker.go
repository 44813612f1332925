package worker

import (
	"context"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// Outbox is the slice of the store the dispatcher drains.
type Outbox interface {
	UnsentNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationSent(ctx context.Context, id int64) error
}

// Publisher hands a notification to the delivery subsystem's broker.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// Dispatcher drains committed notification rows to the broker in the
// background. A row is marked sent only after the broker acknowledged it,
// so a crash between publish and mark can at worst re-publish.
type Dispatcher struct {
	outbox    Outbox
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewDispatcher creates a new outbox dispatcher
func NewDispatcher(outbox Outbox, publisher Publisher, interval time.Duration, batchSize int) *Dispatcher {
	return &Dispatcher{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    util.GetLogger(),
	}
}

// Start polls the outbox until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting notification dispatcher",
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Notification dispatcher stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := d.drainOnce(ctx); err != nil {
				d.logger.Error("Outbox drain failed", zap.Error(err))
			}
		}
	}
}

// drainOnce publishes one batch of unsent notifications.
func (d *Dispatcher) drainOnce(ctx context.Context) error {
	notifications, err := d.outbox.UnsentNotifications(ctx, d.batchSize)
	if err != nil {
		return err
	}

	for i := range notifications {
		n := &notifications[i]
		if err := d.publisher.PublishNotification(ctx, n); err != nil {
			util.NotificationPublishFailures.Inc()
			d.logger.Error("Failed to publish notification",
				zap.Int64("notification_id", n.ID),
				zap.Error(err))
			continue
		}

		if err := d.outbox.MarkNotificationSent(ctx, n.ID); err != nil {
			d.logger.Error("Failed to mark notification sent",
				zap.Int64("notification_id", n.ID),
				zap.Error(err))
			continue
		}
		util.NotificationsPublishedTotal.Inc()
	}
	return nil
}
