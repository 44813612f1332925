package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	unsent []models.Notification
	marked []int64
}

func (f *fakeOutbox) UnsentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit > len(f.unsent) {
		limit = len(f.unsent)
	}
	return f.unsent[:limit], nil
}

func (f *fakeOutbox) MarkNotificationSent(ctx context.Context, id int64) error {
	f.marked = append(f.marked, id)
	return nil
}

type fakePublisher struct {
	published []int64
	failOn    int64
}

func (f *fakePublisher) PublishNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == f.failOn {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, n.ID)
	return nil
}

func TestDrainOncePublishesAndMarks(t *testing.T) {
	outbox := &fakeOutbox{unsent: []models.Notification{
		{ID: 1, UserID: 10, Type: models.NotificationOrderPlaced, RelatedID: 100},
		{ID: 2, UserID: 20, Type: models.NotificationOrderRejected, RelatedID: 100},
	}}
	publisher := &fakePublisher{}
	d := NewDispatcher(outbox, publisher, time.Second, 10)

	require.NoError(t, d.drainOnce(context.Background()))

	assert.Equal(t, []int64{1, 2}, publisher.published)
	assert.Equal(t, []int64{1, 2}, outbox.marked)
}

func TestDrainOnceSkipsFailedPublish(t *testing.T) {
	outbox := &fakeOutbox{unsent: []models.Notification{
		{ID: 1, UserID: 10, RelatedID: 100},
		{ID: 2, UserID: 20, RelatedID: 100},
	}}
	publisher := &fakePublisher{failOn: 1}
	d := NewDispatcher(outbox, publisher, time.Second, 10)

	require.NoError(t, d.drainOnce(context.Background()))

	assert.Equal(t, []int64{2}, publisher.published)
	assert.Equal(t, []int64{2}, outbox.marked, "failed row stays unsent for the next poll")
}

func TestDrainOnceRespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{unsent: []models.Notification{
		{ID: 1}, {ID: 2}, {ID: 3},
	}}
	publisher := &fakePublisher{}
	d := NewDispatcher(outbox, publisher, time.Second, 2)

	require.NoError(t, d.drainOnce(context.Background()))

	assert.Len(t, publisher.published, 2)
}

func TestStartStopsOnCancel(t *testing.T) {
	outbox := &fakeOutbox{}
	publisher := &fakePublisher{}
	d := NewDispatcher(outbox, publisher, time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on context cancellation")
	}
}
