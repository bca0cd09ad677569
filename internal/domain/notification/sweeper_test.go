package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperClosesStaleEntries(t *testing.T) {
	logs := newFakeLogStore()

	stale := &LogEntry{Type: "booking_confirmation", Channel: "email", Recipient: "a@example.com"}
	require.NoError(t, logs.Create(context.Background(), stale))
	stale.Status = StatusPending
	stale.UpdatedAt = time.Now().Add(-time.Hour)

	fresh := &LogEntry{Type: "booking_confirmation", Channel: "email", Recipient: "b@example.com"}
	require.NoError(t, logs.Create(context.Background(), fresh))
	fresh.Status = StatusPending

	done := &LogEntry{Type: "marketing", Channel: "sms", Recipient: "+15551234567"}
	require.NoError(t, logs.Create(context.Background(), done))
	done.Status = StatusSent
	done.UpdatedAt = time.Now().Add(-time.Hour)

	s := NewSweeper(logs, SweeperConfig{StaleThreshold: 10 * time.Minute})
	s.sweep(context.Background())

	assert.Equal(t, StatusFailed, stale.Status)
	assert.Equal(t, "send interrupted before completion", stale.ErrorMessage)

	assert.Equal(t, StatusPending, fresh.Status, "entries inside the threshold are untouched")
	assert.Equal(t, StatusSent, done.Status, "terminal entries are untouched")
}

func TestSweeperDefaults(t *testing.T) {
	s := NewSweeper(newFakeLogStore(), SweeperConfig{})
	assert.Equal(t, 5*time.Minute, s.config.Interval)
	assert.Equal(t, 10*time.Minute, s.config.StaleThreshold)
	assert.Equal(t, 50, s.config.BatchSize)
}
