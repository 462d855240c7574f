// Package util defines board fixtures shared by tests: upstream XHR rows and
// the streaming-board page HTML they pair with.
package util

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CardSpec describes one court on the fixture board: the XHR row fields and
// the card markup derived from them.
type CardSpec struct {
	CourtCode   string
	CourtNumber string
	JudgeName   string
	CaseInfo    string
	SrNo        string
	StreamHref  string
	Photos      []string
	Live        bool
	// OmitCard leaves the row in the XHR payload without a matching card,
	// exercising the parser's silent row drop.
	OmitCard bool
}

// Row returns the card's upstream XHR row object.
func (c CardSpec) Row() map[string]string {
	return map[string]string{
		"courtcode": c.CourtCode,
		"caseinfo":  c.CaseInfo,
		"gsrno":     c.SrNo,
	}
}

// XHRPayload renders specs as the upstream JSON array.
func XHRPayload(specs ...CardSpec) []byte {
	rows := make([]map[string]string, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, s.Row())
	}
	out, err := json.Marshal(rows)
	if err != nil {
		panic(err)
	}
	return out
}

// XHRPayloadString renders specs as a JSON string whose contents are the
// JSON array, the double-encoded shape the upstream sometimes serves.
func XHRPayloadString(specs ...CardSpec) []byte {
	inner := XHRPayload(specs...)
	out, err := json.Marshal(string(inner))
	if err != nil {
		panic(err)
	}
	return out
}

// Card renders the card's streaming board markup.
func (c CardSpec) Card() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="col-md-4"><div class="card" id="dv_%s">`, c.CourtCode)
	fmt.Fprintf(&b, `<div class="card-header" id="court_%s">COURT NO: %s</div>`, c.CourtCode, c.CourtNumber)
	b.WriteString(`<div class="card-body">`)
	if c.Live {
		b.WriteString(`<span class="blink_me">[Live]</span>`)
	}
	fmt.Fprintf(&b, `<p class="card-category"><b>%s</b></p>`, c.JudgeName)
	for _, photo := range c.Photos {
		fmt.Fprintf(&b, `<img class="photoclass" src="%s" alt="judge"/>`, photo)
	}
	if c.StreamHref != "" {
		fmt.Fprintf(&b, `<a href="%s" target="_blank">Watch</a>`, c.StreamHref)
	}
	fmt.Fprintf(&b, `<div class="card-footer">%s</div>`, c.CaseInfo)
	b.WriteString(`</div></div></div>`)
	return b.String()
}

// BoardHTML renders the streaming-board page document containing a card for
// every spec that does not set OmitCard.
func BoardHTML(specs ...CardSpec) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Streaming Board</title></head><body><div class="container">`)
	for _, s := range specs {
		if s.OmitCard {
			continue
		}
		b.WriteString(s.Card())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// InSessionSpec returns a card spec for a case currently being heard.
func InSessionSpec(code, caseNumber string) CardSpec {
	return CardSpec{
		CourtCode:   code,
		CourtNumber: code,
		JudgeName:   "HON'BLE JUSTICE A. EXAMPLE",
		CaseInfo:    caseNumber,
		SrNo:        "SR 1",
		StreamHref:  "/stream/" + code,
		Photos:      []string{"./photos/judge_" + code + ".jpg"},
		Live:        true,
	}
}

// PendingSpec returns a card spec for a case waiting at a queue position.
// Pending cases carry the recess marker: in-session and sitting-over courts
// never join the pending queue.
func PendingSpec(code, caseNumber string, position int) CardSpec {
	return CardSpec{
		CourtCode:   code,
		CourtNumber: code,
		JudgeName:   "HON'BLE JUSTICE A. EXAMPLE",
		CaseInfo:    caseNumber + " (RECESS)",
		SrNo:        fmt.Sprintf("SR %d", position),
		StreamHref:  "/stream/" + code,
		Photos:      []string{"./photos/judge_" + code + ".jpg"},
	}
}

// IdleSpec returns a card spec for a court with no case information beyond a
// serial number.
func IdleSpec(code string, position int) CardSpec {
	return CardSpec{
		CourtCode:   code,
		CourtNumber: code,
		JudgeName:   "HON'BLE JUSTICE A. EXAMPLE",
		CaseInfo:    "-",
		SrNo:        fmt.Sprintf("SR %d", position),
	}
}

// SittingOverSpec returns a card spec for a court done for the day.
func SittingOverSpec(code string) CardSpec {
	return CardSpec{
		CourtCode:   code,
		CourtNumber: code,
		JudgeName:   "HON'BLE JUSTICE A. EXAMPLE",
		CaseInfo:    "COURT SITTING OVER",
	}
}
