package service

import (
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to models.Status
	}{
		{models.StatusPending, models.StatusAccepted},
		{models.StatusPending, models.StatusRejected},
		{models.StatusPending, models.StatusCancelled},
		{models.StatusAccepted, models.StatusProcessing},
		{models.StatusAccepted, models.StatusCancelled},
		{models.StatusProcessing, models.StatusShipped},
		{models.StatusProcessing, models.StatusCancelled},
		{models.StatusShipped, models.StatusCompleted},
		{models.StatusShipped, models.StatusCancelled},
	}
	allowedSet := make(map[[2]models.Status]bool, len(allowed))
	for _, tc := range allowed {
		allowedSet[[2]models.Status{tc.from, tc.to}] = true
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	all := []models.Status{
		models.StatusPending, models.StatusAccepted, models.StatusProcessing,
		models.StatusShipped, models.StatusCompleted, models.StatusRejected,
		models.StatusCancelled,
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]models.Status{from, to}] {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusRejected))
	assert.True(t, IsTerminal(models.StatusCancelled))

	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusShipped))
	assert.False(t, IsTerminal(models.Status("LOST")), "unknown statuses are not terminal")
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(models.StatusPending))
	assert.False(t, KnownStatus(models.Status("LOST")))
	assert.False(t, KnownStatus(models.Status("pending")), "statuses are case sensitive")
}

func TestRestoresStock(t *testing.T) {
	// Reject and cancel release the reservation made at creation.
	assert.True(t, RestoresStock(models.StatusPending, models.StatusRejected))
	assert.True(t, RestoresStock(models.StatusPending, models.StatusCancelled))
	assert.True(t, RestoresStock(models.StatusAccepted, models.StatusCancelled))
	assert.True(t, RestoresStock(models.StatusProcessing, models.StatusCancelled))
	assert.True(t, RestoresStock(models.StatusShipped, models.StatusCancelled))

	// Moving toward completion never touches stock.
	assert.False(t, RestoresStock(models.StatusPending, models.StatusAccepted))
	assert.False(t, RestoresStock(models.StatusAccepted, models.StatusProcessing))
	assert.False(t, RestoresStock(models.StatusProcessing, models.StatusShipped))
	assert.False(t, RestoresStock(models.StatusShipped, models.StatusCompleted))
}
