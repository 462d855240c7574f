package board

import "time"

// CurrentCourt is the durable per-court view maintained across ticks. It
// carries the last full court, the canonical hash of its last real change,
// and the hysteresis counters that smooth over flaky fetches.
type CurrentCourt struct {
	CourtCode    string    `json:"courtCode"`
	Data         *Court    `json:"data"`
	DataHash     string    `json:"dataHash"`
	CheckedAt    time.Time `json:"checkedAt"`
	ChangedAt    time.Time `json:"changedAt"`
	MissingCount int       `json:"missingCount"`
	IsVisible    bool      `json:"isVisible"`
}

// CaseHistory is one append-only observation of a case on the board.
// Entries are unique on (CaseNumber, Status, Position, CourtNumber,
// ScrapedAt) so replaying a tick inserts nothing new.
type CaseHistory struct {
	CaseNumber  string     `json:"caseNumber"`
	Status      CaseStatus `json:"status"`
	Position    *int       `json:"position,omitempty"`
	CourtNumber string     `json:"courtNumber"`
	JudgeName   string     `json:"judgeName,omitempty"`
	ScrapedAt   time.Time  `json:"scrapedAt"`
}

// StatusEntry is one element of a case's bounded status tail.
type StatusEntry struct {
	Status        CaseStatus `json:"status"`
	Timestamp     time.Time  `json:"timestamp"`
	CourtNumber   string     `json:"courtNumber"`
	QueuePosition *int       `json:"queuePosition,omitempty"`
}

// StatusHistoryLimit bounds the StatusHistory tail kept per case.
const StatusHistoryLimit = 100

// CaseStatistics aggregates everything observed about one case number.
type CaseStatistics struct {
	CaseNumber       string        `json:"caseNumber"`
	FirstSeen        time.Time     `json:"firstSeen"`
	LastSeen         time.Time     `json:"lastSeen"`
	TotalAppearances int           `json:"totalAppearances"`
	Courts           []string      `json:"courts"`
	Judges           []string      `json:"judges"`
	StatusHistory    []StatusEntry `json:"statusHistory"`
	WatchCount       int           `json:"watchCount"`
}

// AppendStatus pushes an entry onto the status tail, trimming the head so at
// most limit entries remain. A non-positive limit falls back to
// StatusHistoryLimit.
func (s *CaseStatistics) AppendStatus(e StatusEntry, limit int) {
	if limit <= 0 {
		limit = StatusHistoryLimit
	}
	s.StatusHistory = append(s.StatusHistory, e)
	if over := len(s.StatusHistory) - limit; over > 0 {
		s.StatusHistory = s.StatusHistory[over:]
	}
}

// AddCourt merges a court number into the set-valued Courts field.
func (s *CaseStatistics) AddCourt(court string) {
	s.Courts = addToSet(s.Courts, court)
}

// AddJudge merges a judge name into the set-valued Judges field.
func (s *CaseStatistics) AddJudge(judge string) {
	s.Judges = addToSet(s.Judges, judge)
}

func addToSet(set []string, v string) []string {
	if v == "" {
		return set
	}
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}

// Device is a registered mobile device able to receive push notifications.
// The ingest core only ever reads devices.
type Device struct {
	DeviceID     string    `json:"deviceId"`
	PushToken    string    `json:"pushToken"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// NotificationLog records one push attempt, successful or not. Logs are
// dedup-keyed on (DeviceID, CaseNumber, Type, CourtNumber) and pruned after
// thirty days by the cleanup chore.
type NotificationLog struct {
	DeviceID    string    `json:"deviceId"`
	CaseNumber  string    `json:"caseNumber"`
	Type        AlertType `json:"notificationType"`
	CourtNumber string    `json:"courtNumber"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// Snapshot is a periodic full-board capture, the read API's fallback when
// the in-memory court cache has gone cold.
type Snapshot struct {
	Courts  []*Court  `json:"courts"`
	TakenAt time.Time `json:"takenAt"`
}
