package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes alerts to the process log instead of a push gateway. The
// node falls back to it when push dispatch is disabled or no credentials are
// configured, so the watch state machine and delivery records keep working.
type LogSender struct{}

// Send logs the rendered notification and reports success.
func (LogSender) Send(_ context.Context, _ string, n Notification, data map[string]string) error {
	log.WithFields(logrus.Fields{
		"title":      n.Title,
		"caseNumber": data["caseNumber"],
		"type":       data["type"],
	}).Info("Push dispatch disabled, alert logged only")
	return nil
}
