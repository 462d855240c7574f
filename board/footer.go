package board

import (
	"regexp"
	"strings"
)

// FooterKind tags the parsed variant of a court card's case footer.
type FooterKind int

const (
	// FooterEmpty means the card showed no case information.
	FooterEmpty FooterKind = iota
	// FooterInSession means a case number is being heard right now.
	FooterInSession
	// FooterRecess means the court is in recess on the shown case number.
	FooterRecess
	// FooterSittingOver means the court finished sitting for the day.
	FooterSittingOver
)

// CaseFooter is the parsed-once variant of the raw caseinfo footer text.
// Raw preserves the whitespace-collapsed input because the delta signature
// compares footers before any derivation.
type CaseFooter struct {
	Kind       FooterKind
	CaseNumber string
	Raw        string
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	recessRe     = regexp.MustCompile(`\(RECESS\)`)
)

// CollapseWhitespace folds all runs of whitespace into single spaces and
// trims the ends, normalizing upstream markup artifacts.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// ParseCaseFooter classifies a raw caseinfo footer. Matching rules, applied
// to the whitespace-collapsed text in order:
//   - contains "COURT SITTING OVER" (case-insensitive) -> sitting over
//   - contains the literal "(RECESS)" -> recess, case number is the footer
//     with the marker removed
//   - non-empty and not the literal "-" -> in session on the footer text
//   - otherwise empty
func ParseCaseFooter(raw string) CaseFooter {
	collapsed := CollapseWhitespace(raw)
	switch {
	case strings.Contains(strings.ToUpper(collapsed), "COURT SITTING OVER"):
		return CaseFooter{Kind: FooterSittingOver, Raw: collapsed}
	case recessRe.MatchString(collapsed):
		num := CollapseWhitespace(recessRe.ReplaceAllString(collapsed, ""))
		return CaseFooter{Kind: FooterRecess, CaseNumber: num, Raw: collapsed}
	case collapsed != "" && collapsed != "-":
		return CaseFooter{Kind: FooterInSession, CaseNumber: collapsed, Raw: collapsed}
	default:
		return CaseFooter{Kind: FooterEmpty, Raw: collapsed}
	}
}

// Status maps the footer variant to the court's case status.
func (f CaseFooter) Status() CaseStatus {
	switch f.Kind {
	case FooterInSession:
		return StatusInSession
	case FooterRecess:
		return StatusRecess
	case FooterSittingOver:
		return StatusSittingOver
	default:
		return StatusNone
	}
}

// Type maps the footer variant to the coarse case type label.
func (f CaseFooter) Type() CaseType {
	switch f.Kind {
	case FooterInSession:
		return CaseTypeActive
	case FooterRecess:
		return CaseTypeRecess
	case FooterSittingOver:
		return CaseTypeSittingOver
	default:
		return CaseTypeNone
	}
}
