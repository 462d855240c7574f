// Package board defines the domain types for a courthouse streaming
// display board: the per-court entity scraped from the upstream page,
// the case footer variants shown on a court card, watchlist state, and
// the canonical serialization used for change detection.
package board

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// BenchType describes how many judges sit in a court.
type BenchType string

const (
	// SingleBench is a court presided over by a single judge.
	SingleBench BenchType = "SingleBench"
	// DivisionBench is a court presided over by two or more judges.
	DivisionBench BenchType = "DivisionBench"
)

// CaseStatus is the hearing status derived from a court card's case footer.
type CaseStatus string

const (
	// StatusInSession indicates a case is currently being heard.
	StatusInSession CaseStatus = "IN_SESSION"
	// StatusRecess indicates the court is in recess with a case pending resumption.
	StatusRecess CaseStatus = "RECESS"
	// StatusSittingOver indicates the court has finished sitting for the day.
	StatusSittingOver CaseStatus = "SITTING_OVER"
	// StatusNone is the zero status for cards with no case information.
	StatusNone CaseStatus = ""
)

// CaseType is the coarse card classification mirrored to API consumers.
type CaseType string

const (
	CaseTypeActive      CaseType = "active"
	CaseTypeRecess      CaseType = "recess"
	CaseTypeSittingOver CaseType = "sitting_over"
	CaseTypeNone        CaseType = ""
)

// Court is one court's state extracted from a single scrape of the display
// board. It is transient and regenerated every tick; durable bookkeeping
// lives in the store's CurrentCourt records.
type Court struct {
	CourtCode     string     `json:"courtCode"`
	CourtNumber   string     `json:"courtNumber"`
	JudgeName     string     `json:"judgeName"`
	BenchType     BenchType  `json:"benchType"`
	JudgeCount    int        `json:"judgeCount"`
	JudgePhotos   []string   `json:"judgePhotos"`
	CaseNumber    string     `json:"caseNumber,omitempty"`
	CaseStatus    CaseStatus `json:"caseStatus,omitempty"`
	CaseType      CaseType   `json:"caseType,omitempty"`
	SrNo          string     `json:"srNo,omitempty"`
	QueuePosition *int       `json:"queuePosition,omitempty"`
	StreamURL     string     `json:"streamUrl,omitempty"`
	HasStream     bool       `json:"hasStream"`
	IsLive        bool       `json:"isLive"`
	IsActive      bool       `json:"isActive"`
	ScrapedAt     time.Time  `json:"scrapedAt"`
}

// canonicalCourt is the fixed-order projection of Court that participates in
// the canonical hash. ScrapedAt is deliberately absent: two scrapes of an
// identical board must produce identical hashes.
type canonicalCourt struct {
	CourtCode     string     `json:"courtCode"`
	CourtNumber   string     `json:"courtNumber"`
	JudgeName     string     `json:"judgeName"`
	BenchType     BenchType  `json:"benchType"`
	JudgeCount    int        `json:"judgeCount"`
	JudgePhotos   []string   `json:"judgePhotos"`
	CaseNumber    string     `json:"caseNumber"`
	CaseStatus    CaseStatus `json:"caseStatus"`
	CaseType      CaseType   `json:"caseType"`
	SrNo          string     `json:"srNo"`
	QueuePosition *int       `json:"queuePosition"`
	StreamURL     string     `json:"streamUrl"`
	HasStream     bool       `json:"hasStream"`
	IsLive        bool       `json:"isLive"`
	IsActive      bool       `json:"isActive"`
}

// CanonicalJSON returns the stable serialization of the court used for
// durable change detection. Field order is fixed by the struct definition,
// so equal courts always serialize to equal bytes.
func (c *Court) CanonicalJSON() ([]byte, error) {
	return json.Marshal(canonicalCourt{
		CourtCode:     c.CourtCode,
		CourtNumber:   c.CourtNumber,
		JudgeName:     c.JudgeName,
		BenchType:     c.BenchType,
		JudgeCount:    c.JudgeCount,
		JudgePhotos:   c.JudgePhotos,
		CaseNumber:    c.CaseNumber,
		CaseStatus:    c.CaseStatus,
		CaseType:      c.CaseType,
		SrNo:          c.SrNo,
		QueuePosition: c.QueuePosition,
		StreamURL:     c.StreamURL,
		HasStream:     c.HasStream,
		IsLive:        c.IsLive,
		IsActive:      c.IsActive,
	})
}

// DataHash returns the hex-encoded SHA-256 of the court's canonical JSON.
func (c *Court) DataHash() (string, error) {
	enc, err := c.CanonicalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(enc)
	return hex.EncodeToString(sum[:]), nil
}

// HashHTML returns the hex-encoded SHA-256 of a card's inner HTML. It is the
// cheap first-tier change signal computed before any parsing-derived fields.
func HashHTML(innerHTML string) string {
	sum := sha256.Sum256([]byte(innerHTML))
	return hex.EncodeToString(sum[:])
}

// Signature is the in-memory per-court change signature. A court is
// considered unchanged for dispatch purposes iff all three fields match the
// previous tick.
type Signature struct {
	HTMLHash   string
	CaseFooter string
	SrNo       string
}

// Equal reports whether two signatures match field for field.
func (s Signature) Equal(o Signature) bool {
	return s.HTMLHash == o.HTMLHash && s.CaseFooter == o.CaseFooter && s.SrNo == o.SrNo
}

// Observation pairs a parsed court with the raw card inputs the delta
// signature is computed from: the card's inner HTML and the untouched
// (whitespace-collapsed) case footer, compared before any derivation.
type Observation struct {
	Court     *Court
	InnerHTML string
	RawFooter string
}

// Signature computes the in-memory change signature for this observation.
func (o *Observation) Signature() Signature {
	return Signature{
		HTMLHash:   HashHTML(o.InnerHTML),
		CaseFooter: o.RawFooter,
		SrNo:       o.Court.SrNo,
	}
}

// Delta is the real-time broadcast event emitted when a tick produces a
// non-empty changed set.
type Delta struct {
	Type      string    `json:"type"`
	Courts    []*Court  `json:"courts"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// DeltaEventType is the wire type tag carried by every Delta broadcast.
const DeltaEventType = "COURT_DELTA"

// NewDelta wraps a changed set in the broadcast envelope.
func NewDelta(courts []*Court, scrapedAt time.Time) *Delta {
	return &Delta{Type: DeltaEventType, Courts: courts, ScrapedAt: scrapedAt}
}

// IntPtr is a convenience for building optional queue positions.
func IntPtr(v int) *int {
	return &v
}
