package notify

import (
	"context"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/runtime/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "notify")

// ErrNoDeliverableDevice is returned when a watchlist's device is unknown,
// deactivated, or has no push token. Nothing is sent and nothing is logged.
var ErrNoDeliverableDevice = errors.New("watchlist has no deliverable device")

// deviceStore is the slice of the board database the dispatcher needs.
type deviceStore interface {
	Device(ctx context.Context, deviceID string) (*board.Device, error)
	RecordNotification(ctx context.Context, n *board.NotificationLog) error
}

// Dispatcher resolves a watchlist's device and pushes alerts through the
// configured gateway. Every actual send attempt is recorded, failed ones
// with the error text, so the cleanup chore and the dedup view see both.
type Dispatcher struct {
	sender Sender
	store  deviceStore
}

// NewDispatcher wires a gateway to the device registry.
func NewDispatcher(sender Sender, store deviceStore) *Dispatcher {
	return &Dispatcher{sender: sender, store: store}
}

// Dispatch delivers one alert to the watchlist's device. The returned error
// reflects delivery: callers must not advance watchlist state when it is
// non-nil.
func (d *Dispatcher) Dispatch(ctx context.Context, w *board.Watchlist, a *board.Alert, now time.Time) error {
	device, err := d.store.Device(ctx, w.DeviceID)
	if err != nil {
		return errors.Wrap(err, "look up device")
	}
	if device == nil || !device.Active || device.PushToken == "" {
		return ErrNoDeliverableDevice
	}

	n, data := Render(a)
	sendErr := d.sender.Send(ctx, device.PushToken, n, data)

	record := &board.NotificationLog{
		DeviceID:    w.DeviceID,
		CaseNumber:  a.CaseNumber,
		Type:        a.Type,
		CourtNumber: a.CourtNumber,
		Title:       n.Title,
		Body:        n.Body,
		Success:     sendErr == nil,
		SentAt:      now,
	}
	if sendErr != nil {
		record.Error = sendErr.Error()
	}
	if err := d.store.RecordNotification(ctx, record); err != nil {
		// The push already went out; a bookkeeping miss must not make the
		// processor retry and double-send.
		log.WithError(err).WithFields(logrus.Fields{
			"deviceId":   w.DeviceID,
			"caseNumber": a.CaseNumber,
		}).Error("Could not record notification")
	}
	if sendErr != nil {
		return errors.Wrap(sendErr, "send push")
	}
	log.WithField("deviceId", w.DeviceID).WithFields(logging.AlertFields(a)).Debug("Delivered push alert")
	return nil
}
