package board

import "time"

// WatchState is the last state a watchlist observed for its case. States
// rank how close the case is to being heard; COMPLETED is terminal until
// the case reappears.
type WatchState string

const (
	// WatchFar means the case holds a queue position beyond the near window.
	WatchFar WatchState = "FAR"
	// WatchNear means the case is within the top ten pending positions.
	WatchNear WatchState = "NEAR"
	// WatchVeryNear means the case is within the top three pending positions.
	WatchVeryNear WatchState = "VERY_NEAR"
	// WatchNext means the case is first in the pending queue.
	WatchNext WatchState = "NEXT"
	// WatchInSession means the case is being heard.
	WatchInSession WatchState = "IN_SESSION"
	// WatchCompleted means the case disappeared from the board after being
	// tracked, which the processor treats as the hearing having ended.
	WatchCompleted WatchState = "COMPLETED"
	// WatchNone is the zero state before the first sighting.
	WatchNone WatchState = ""
)

// AlertType names the notification category a state transition produces.
type AlertType string

const (
	// AlertEarlyWarning covers FAR and NEAR positions.
	AlertEarlyWarning AlertType = "early_warning"
	// AlertApproaching covers VERY_NEAR and NEXT positions.
	AlertApproaching AlertType = "approaching"
	// AlertInSession fires when the case starts being heard.
	AlertInSession AlertType = "in_session"
	// AlertCompleted fires when the case has been absent long enough to be
	// considered finished.
	AlertCompleted AlertType = "completed"
)

// NotificationSettings gates which alert types a watchlist wants delivered.
type NotificationSettings struct {
	EarlyWarning bool `json:"earlyWarning"`
	Approaching  bool `json:"approaching"`
	InSession    bool `json:"inSession"`
	Completed    bool `json:"completed"`
}

// AllNotifications enables every alert type, the default for new watchlists.
func AllNotifications() NotificationSettings {
	return NotificationSettings{EarlyWarning: true, Approaching: true, InSession: true, Completed: true}
}

// Allows reports whether the settings permit the given alert type.
func (n NotificationSettings) Allows(t AlertType) bool {
	switch t {
	case AlertEarlyWarning:
		return n.EarlyWarning
	case AlertApproaching:
		return n.Approaching
	case AlertInSession:
		return n.InSession
	case AlertCompleted:
		return n.Completed
	default:
		return false
	}
}

// Watchlist tracks one device's interest in one case number together with
// the state machine fields the processor mutates each tick. A device holds
// at most one active watchlist per case number.
type Watchlist struct {
	ID                   string               `json:"id"`
	DeviceID             string               `json:"deviceId"`
	CaseNumber           string               `json:"caseNumber"`
	Settings             NotificationSettings `json:"notificationSettings"`
	Active               bool                 `json:"active"`
	CreatedAt            time.Time            `json:"createdAt"`
	LastSeenStatus       WatchState           `json:"lastSeenStatus,omitempty"`
	LastSeenCourt        string               `json:"lastSeenCourt,omitempty"`
	LastSeenPosition     *int                 `json:"lastSeenPosition,omitempty"`
	MissCount            int                  `json:"missCount"`
	LastNotificationTime time.Time            `json:"lastNotificationTime,omitempty"`
}

// CooldownPassed reports whether enough time has elapsed since the last
// alert on this watchlist to emit another.
func (w *Watchlist) CooldownPassed(now time.Time, cooldown time.Duration) bool {
	if w.LastNotificationTime.IsZero() {
		return true
	}
	return now.Sub(w.LastNotificationTime) >= cooldown
}

// Alert is the event a watchlist state transition produces. Position and
// StreamURL are optional; completion alerts carry empty details.
type Alert struct {
	Type        AlertType `json:"type"`
	CaseNumber  string    `json:"caseNumber"`
	CourtNumber string    `json:"courtNumber,omitempty"`
	JudgeName   string    `json:"judgeName,omitempty"`
	Position    *int      `json:"position,omitempty"`
	Velocity    int       `json:"velocity"`
	StreamURL   string    `json:"streamUrl,omitempty"`
}
