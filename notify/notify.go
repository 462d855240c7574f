// Package notify renders watchlist alerts into push payloads and delivers
// them through a pluggable gateway, recording every attempt durably.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/courtwatch/courtwatch/board"
)

// Notification is the visible part of a push message.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sender delivers one push message to a device token. Data values must be
// strings; the gateway rejects anything else.
type Sender interface {
	Send(ctx context.Context, token string, n Notification, data map[string]string) error
}

// Render builds the push payload for an alert. Titles and bodies follow the
// fixed app copy per alert type; the data map carries the machine-readable
// fields for client-side routing.
func Render(a *board.Alert) (Notification, map[string]string) {
	var n Notification
	switch a.Type {
	case board.AlertEarlyWarning:
		n.Title = fmt.Sprintf("⚠️ Case Approaching - %s", a.CaseNumber)
		n.Body = fmt.Sprintf("Your case is %d cases away in Court %s", positionOrZero(a.Position), a.CourtNumber)
	case board.AlertApproaching:
		n.Title = fmt.Sprintf("🔔 Case Next - %s", a.CaseNumber)
		n.Body = fmt.Sprintf("Your case is next in line in Court %s", a.CourtNumber)
	case board.AlertInSession:
		n.Title = fmt.Sprintf("⚖️ Case Started - %s", a.CaseNumber)
		n.Body = fmt.Sprintf("Your case is now IN SESSION in Court %s", a.CourtNumber)
		if a.JudgeName != "" {
			n.Body += fmt.Sprintf(" - %s", a.JudgeName)
		}
	case board.AlertCompleted:
		n.Title = fmt.Sprintf("✅ Case Completed - %s", a.CaseNumber)
		n.Body = fmt.Sprintf("Your case hearing has ended in Court %s", a.CourtNumber)
	}

	data := map[string]string{
		"type":       string(a.Type),
		"caseNumber": a.CaseNumber,
		"velocity":   strconv.Itoa(a.Velocity),
	}
	if a.CourtNumber != "" {
		data["courtNumber"] = a.CourtNumber
	}
	if a.Position != nil {
		data["position"] = strconv.Itoa(*a.Position)
	}
	if a.StreamURL != "" {
		data["streamUrl"] = a.StreamURL
	}
	return n, data
}

func positionOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
