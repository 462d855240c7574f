// Package parse turns one fetch cycle's XHR rows and board page into court
// observations. Each row is joined to its DOM card by the upstream id
// convention dv_<courtcode>; rows without a code or a card are dropped.
package parse

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/scraper/fetch"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "parse")

var (
	courtNoPrefix = regexp.MustCompile(`(?i)^court\s*no\.?\s*:?\s*`)
	firstInteger  = regexp.MustCompile(`\d+`)
)

// Parser extracts courts from board documents. It holds no per-tick state;
// the configured page URL is only used to resolve relative links.
type Parser struct {
	base *url.URL
}

// New returns a parser that resolves stream links against the given board
// page URL's origin and judge photos against the page URL itself.
func New(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse board page url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("board page url %q has no origin", baseURL)
	}
	return &Parser{base: u}, nil
}

// Parse emits one observation per XHR row with a matching card in the page
// document, stamped with the tick's scrape time. A malformed document fails
// the whole call; malformed rows are dropped one by one.
func (p *Parser) Parse(rows []fetch.Row, pageHTML string, scrapedAt time.Time) ([]*board.Observation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, errors.Wrap(err, "parse board page")
	}
	observed := make([]*board.Observation, 0, len(rows))
	for _, row := range rows {
		if row.CourtCode == "" {
			log.WithField("caseinfo", row.CaseInfo).Debug("Dropping row without a court code")
			continue
		}
		card := doc.Find("#dv_" + row.CourtCode).First()
		if card.Length() == 0 {
			log.WithField("courtCode", row.CourtCode).Debug("Dropping row without a board card")
			continue
		}
		obs, err := p.parseCard(doc, row, card, scrapedAt)
		if err != nil {
			log.WithError(err).WithField("courtCode", row.CourtCode).Debug("Dropping unparseable card")
			continue
		}
		observed = append(observed, obs)
	}
	return observed, nil
}

func (p *Parser) parseCard(doc *goquery.Document, row fetch.Row, card *goquery.Selection, scrapedAt time.Time) (*board.Observation, error) {
	innerHTML, err := card.Html()
	if err != nil {
		return nil, errors.Wrap(err, "render card html")
	}

	footer := board.ParseCaseFooter(row.CaseInfo)
	srNo := board.CollapseWhitespace(row.GSrNo)
	photos := p.judgePhotos(card)
	bench, judges := benchFromPhotos(photos)
	streamURL := p.streamURL(card)
	isLive := card.Find(".blink_me").Length() > 0
	status := footer.Status()

	court := &board.Court{
		CourtCode:     row.CourtCode,
		CourtNumber:   courtNumber(doc, row.CourtCode),
		JudgeName:     judgeName(card),
		BenchType:     bench,
		JudgeCount:    judges,
		JudgePhotos:   photos,
		CaseNumber:    footer.CaseNumber,
		CaseStatus:    status,
		CaseType:      footer.Type(),
		SrNo:          srNo,
		QueuePosition: queuePosition(srNo),
		StreamURL:     streamURL,
		HasStream:     streamURL != "",
		IsLive:        isLive,
		IsActive:      isLive || status == board.StatusInSession || status == board.StatusRecess,
		ScrapedAt:     scrapedAt,
	}
	return &board.Observation{Court: court, InnerHTML: innerHTML, RawFooter: footer.Raw}, nil
}

// judgeName prefers the bolded card category; failing that it falls back to
// the first header-ish block. The upstream appends a "[Live]" marker to the
// name while a stream is up, which is never part of the name itself.
func judgeName(card *goquery.Selection) string {
	name := card.Find(".card-category b").First().Text()
	if board.CollapseWhitespace(name) == "" {
		name = card.Find(".card-header, .card-title, .card-body").First().Text()
	}
	return board.CollapseWhitespace(strings.ReplaceAll(name, "[Live]", ""))
}

// courtNumber reads the court's display label, which upstream renders as
// "COURT NO: <n>" in the element id'd court_<courtcode>.
func courtNumber(doc *goquery.Document, courtCode string) string {
	label := board.CollapseWhitespace(doc.Find("#court_" + courtCode).First().Text())
	return board.CollapseWhitespace(courtNoPrefix.ReplaceAllString(label, ""))
}

// streamURL returns the card's first anchor target. Absolute-path hrefs are
// resolved against the board origin; everything else passes through as
// served.
func (p *Parser) streamURL(card *goquery.Selection) string {
	href := strings.TrimSpace(card.Find("a").First().AttrOr("href", ""))
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		origin := url.URL{Scheme: p.base.Scheme, Host: p.base.Host}
		return origin.String() + href
	}
	return href
}

// judgePhotos collects every image source on the card, preferring src over
// the lazy-load data-src, and resolves each against the board page URL. The
// upstream prefixes relative photo paths with "./".
func (p *Parser) judgePhotos(card *goquery.Selection) []string {
	var photos []string
	card.Find(".photoclass, img").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src == "" {
			return
		}
		photos = append(photos, p.resolvePhoto(src))
	})
	return photos
}

func (p *Parser) resolvePhoto(src string) string {
	src = strings.TrimPrefix(src, "./")
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return p.base.ResolveReference(ref).String()
}

func benchFromPhotos(photos []string) (board.BenchType, int) {
	if len(photos) >= 2 {
		return board.DivisionBench, len(photos)
	}
	return board.SingleBench, 1
}

func queuePosition(srNo string) *int {
	match := firstInteger.FindString(srNo)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return board.IntPtr(n)
}
