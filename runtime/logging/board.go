// Package logging defines shared logrus field builders for board entities.
package logging

import (
	"github.com/courtwatch/courtwatch/board"
	"github.com/sirupsen/logrus"
)

// CourtFields returns the standard log fields for a scraped court.
func CourtFields(c *board.Court) logrus.Fields {
	fields := logrus.Fields{
		"court":  c.CourtNumber,
		"judge":  c.JudgeName,
		"status": c.CaseStatus,
	}
	if c.CaseNumber != "" {
		fields["case"] = c.CaseNumber
	}
	if c.QueuePosition != nil {
		fields["position"] = *c.QueuePosition
	}
	return fields
}

// AlertFields returns the standard log fields for a watchlist alert.
func AlertFields(a *board.Alert) logrus.Fields {
	fields := logrus.Fields{
		"type":  a.Type,
		"case":  a.CaseNumber,
		"court": a.CourtNumber,
	}
	if a.Position != nil {
		fields["position"] = *a.Position
	}
	return fields
}
