package kv

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationFixture(device string, at time.Time, success bool) *board.NotificationLog {
	return &board.NotificationLog{
		DeviceID:    device,
		CaseNumber:  "SCA/1/2024",
		Type:        board.AlertApproaching,
		CourtNumber: "5",
		Title:       "🔔 Case Next - SCA/1/2024",
		Body:        "Your case is next in line in Court 5",
		Success:     success,
		SentAt:      at,
	}
}

func TestRecordAndListNotifications(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.RecordNotification(ctx, notificationFixture("device-1", base, true)))
	require.NoError(t, db.RecordNotification(ctx, notificationFixture("device-1", base.Add(time.Minute), false)))
	require.NoError(t, db.RecordNotification(ctx, notificationFixture("device-2", base, true)))

	logs, err := db.NotificationsByDevice(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].SentAt.Before(logs[1].SentAt), "oldest first")
	assert.True(t, logs[0].Success)
	assert.False(t, logs[1].Success)
}

func TestPruneNotificationLogs(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		require.NoError(t, db.RecordNotification(ctx, notificationFixture("device-1", base.Add(time.Duration(i)*time.Hour), true)))
	}

	pruned, err := db.PruneNotificationLogs(ctx, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, pruned)

	logs, err := db.NotificationsByDevice(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].SentAt.Equal(base.Add(3*time.Hour)), "cutoff itself is retained")

	// Nothing left to prune before the same cutoff.
	pruned, err = db.PruneNotificationLogs(ctx, base.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, pruned)
}

func TestDeviceRoundTrip(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveDevice(ctx, &board.Device{
		DeviceID:     "device-1",
		PushToken:    "token-a",
		Active:       true,
		RegisteredAt: time.Now(),
	}))

	// Re-registration refreshes the token.
	require.NoError(t, db.SaveDevice(ctx, &board.Device{
		DeviceID:  "device-1",
		PushToken: "token-b",
		Active:    true,
	}))

	d, err := db.Device(ctx, "device-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "token-b", d.PushToken)

	unknown, err := db.Device(ctx, "device-404")
	require.NoError(t, err)
	assert.Nil(t, unknown)

	err = db.SaveDevice(ctx, &board.Device{PushToken: "x"})
	require.Error(t, err, "device ID is required")
}
