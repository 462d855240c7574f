package notify

import (
	"context"
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	dbtest "github.com/courtwatch/courtwatch/db/testing"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAlertCopy(t *testing.T) {
	tests := []struct {
		name      string
		alert     *board.Alert
		wantTitle string
		wantBody  string
	}{
		{
			name: "early warning",
			alert: &board.Alert{
				Type:        board.AlertEarlyWarning,
				CaseNumber:  "SCA/1/2024",
				CourtNumber: "5",
				Position:    board.IntPtr(7),
				Velocity:    3,
			},
			wantTitle: "⚠️ Case Approaching - SCA/1/2024",
			wantBody:  "Your case is 7 cases away in Court 5",
		},
		{
			name: "approaching",
			alert: &board.Alert{
				Type:        board.AlertApproaching,
				CaseNumber:  "SCA/1/2024",
				CourtNumber: "5",
				Position:    board.IntPtr(1),
			},
			wantTitle: "🔔 Case Next - SCA/1/2024",
			wantBody:  "Your case is next in line in Court 5",
		},
		{
			name: "in session with judge",
			alert: &board.Alert{
				Type:        board.AlertInSession,
				CaseNumber:  "SCA/1/2024",
				CourtNumber: "5",
				JudgeName:   "HON'BLE JUSTICE A. EXAMPLE",
			},
			wantTitle: "⚖️ Case Started - SCA/1/2024",
			wantBody:  "Your case is now IN SESSION in Court 5 - HON'BLE JUSTICE A. EXAMPLE",
		},
		{
			name: "in session without judge",
			alert: &board.Alert{
				Type:        board.AlertInSession,
				CaseNumber:  "SCA/1/2024",
				CourtNumber: "5",
			},
			wantTitle: "⚖️ Case Started - SCA/1/2024",
			wantBody:  "Your case is now IN SESSION in Court 5",
		},
		{
			name: "completed",
			alert: &board.Alert{
				Type:        board.AlertCompleted,
				CaseNumber:  "SCA/1/2024",
				CourtNumber: "5",
			},
			wantTitle: "✅ Case Completed - SCA/1/2024",
			wantBody:  "Your case hearing has ended in Court 5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, data := Render(tt.alert)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantBody, n.Body)
			assert.Equal(t, string(tt.alert.Type), data["type"])
			assert.Equal(t, tt.alert.CaseNumber, data["caseNumber"])
		})
	}
}

func TestRenderDataMap(t *testing.T) {
	n, data := Render(&board.Alert{
		Type:        board.AlertEarlyWarning,
		CaseNumber:  "WP/9/2026",
		CourtNumber: "12",
		Position:    board.IntPtr(4),
		Velocity:    -1,
		StreamURL:   "https://courts.example.org/stream/12",
	})
	require.NotEmpty(t, n.Title)
	assert.Equal(t, map[string]string{
		"type":        "early_warning",
		"caseNumber":  "WP/9/2026",
		"courtNumber": "12",
		"position":    "4",
		"velocity":    "-1",
		"streamUrl":   "https://courts.example.org/stream/12",
	}, data)

	_, data = Render(&board.Alert{Type: board.AlertCompleted, CaseNumber: "WP/9/2026"})
	assert.NotContains(t, data, "position")
	assert.NotContains(t, data, "streamUrl")
	assert.NotContains(t, data, "courtNumber")
}

type fakeSender struct {
	err   error
	calls int
	token string
	last  Notification
	data  map[string]string
}

func (f *fakeSender) Send(_ context.Context, token string, n Notification, data map[string]string) error {
	f.calls++
	f.token = token
	f.last = n
	f.data = data
	return f.err
}

func registerDevice(t *testing.T, store interface {
	SaveDevice(ctx context.Context, d *board.Device) error
}, id, token string, active bool) {
	require.NoError(t, store.SaveDevice(context.Background(), &board.Device{
		DeviceID:     id,
		PushToken:    token,
		Active:       active,
		RegisteredAt: time.Now(),
	}))
}

func TestDispatchDeliversAndRecords(t *testing.T) {
	store := dbtest.SetupDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(sender, store)
	registerDevice(t, store, "device-1", "tok-1", true)

	now := time.Unix(1700000000, 0).UTC()
	w := &board.Watchlist{ID: "w1", DeviceID: "device-1", CaseNumber: "SCA/1/2024"}
	alert := &board.Alert{
		Type:        board.AlertApproaching,
		CaseNumber:  "SCA/1/2024",
		CourtNumber: "5",
		Position:    board.IntPtr(1),
	}
	require.NoError(t, d.Dispatch(context.Background(), w, alert, now))

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "tok-1", sender.token)
	assert.Equal(t, "🔔 Case Next - SCA/1/2024", sender.last.Title)

	logs, err := store.NotificationsByDevice(context.Background(), "device-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Success)
	assert.Empty(t, logs[0].Error)
	assert.Equal(t, board.AlertApproaching, logs[0].Type)
	assert.Equal(t, now, logs[0].SentAt)
}

func TestDispatchRecordsFailure(t *testing.T) {
	store := dbtest.SetupDB(t)
	sender := &fakeSender{err: errors.New("gateway timeout")}
	d := NewDispatcher(sender, store)
	registerDevice(t, store, "device-1", "tok-1", true)

	w := &board.Watchlist{ID: "w1", DeviceID: "device-1", CaseNumber: "SCA/1/2024"}
	err := d.Dispatch(context.Background(), w, &board.Alert{
		Type:       board.AlertCompleted,
		CaseNumber: "SCA/1/2024",
	}, time.Now())
	require.Error(t, err)

	logs, lerr := store.NotificationsByDevice(context.Background(), "device-1")
	require.NoError(t, lerr)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
	assert.Contains(t, logs[0].Error, "gateway timeout")
}

func TestDispatchSkipsUndeliverableDevices(t *testing.T) {
	store := dbtest.SetupDB(t)
	sender := &fakeSender{}
	d := NewDispatcher(sender, store)

	w := &board.Watchlist{ID: "w1", DeviceID: "ghost", CaseNumber: "SCA/1/2024"}
	alert := &board.Alert{Type: board.AlertCompleted, CaseNumber: "SCA/1/2024"}

	err := d.Dispatch(context.Background(), w, alert, time.Now())
	require.ErrorIs(t, err, ErrNoDeliverableDevice)

	registerDevice(t, store, "inactive", "tok", false)
	w.DeviceID = "inactive"
	err = d.Dispatch(context.Background(), w, alert, time.Now())
	require.ErrorIs(t, err, ErrNoDeliverableDevice)

	registerDevice(t, store, "tokenless", "", true)
	w.DeviceID = "tokenless"
	err = d.Dispatch(context.Background(), w, alert, time.Now())
	require.ErrorIs(t, err, ErrNoDeliverableDevice)

	assert.Zero(t, sender.calls, "nothing must reach the gateway")
	logs, err := store.NotificationsByDevice(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, logs, "skips are not delivery attempts")
}
