package parse

import (
	"testing"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/courtwatch/courtwatch/scraper/fetch"
	"github.com/courtwatch/courtwatch/testing/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePage = "https://courts.example.org/streamingboard/index.php"

func rowsFor(specs ...util.CardSpec) []fetch.Row {
	rows := make([]fetch.Row, 0, len(specs))
	for _, s := range specs {
		rows = append(rows, fetch.Row{CourtCode: s.CourtCode, CaseInfo: s.CaseInfo, GSrNo: s.SrNo})
	}
	return rows
}

func TestNewRejectsOriginlessURL(t *testing.T) {
	_, err := New("streamingboard/index.php")
	require.Error(t, err)
	_, err = New(basePage)
	require.NoError(t, err)
}

func TestParseInSessionCard(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)
	spec := util.InSessionSpec("5", "SCA/1/2024")
	spec.SrNo = "SR 7"
	scrapedAt := time.Unix(1700000000, 0).UTC()

	observed, err := p.Parse(rowsFor(spec), util.BoardHTML(spec), scrapedAt)
	require.NoError(t, err)
	require.Len(t, observed, 1)

	c := observed[0].Court
	assert.Equal(t, "5", c.CourtCode)
	assert.Equal(t, "5", c.CourtNumber)
	assert.Equal(t, "HON'BLE JUSTICE A. EXAMPLE", c.JudgeName)
	assert.Equal(t, board.SingleBench, c.BenchType)
	assert.Equal(t, 1, c.JudgeCount)
	assert.Equal(t, []string{"https://courts.example.org/streamingboard/photos/judge_5.jpg"}, c.JudgePhotos)
	assert.Equal(t, "SCA/1/2024", c.CaseNumber)
	assert.Equal(t, board.StatusInSession, c.CaseStatus)
	assert.Equal(t, board.CaseTypeActive, c.CaseType)
	assert.Equal(t, "SR 7", c.SrNo)
	require.NotNil(t, c.QueuePosition)
	assert.Equal(t, 7, *c.QueuePosition)
	assert.Equal(t, "https://courts.example.org/stream/5", c.StreamURL)
	assert.True(t, c.HasStream)
	assert.True(t, c.IsLive)
	assert.True(t, c.IsActive)
	assert.Equal(t, scrapedAt, c.ScrapedAt)
}

func TestParseFooterVariants(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)

	pending := util.PendingSpec("3", "WP/44/2026", 2)
	idle := util.IdleSpec("4", 9)
	over := util.SittingOverSpec("6")
	specs := []util.CardSpec{pending, idle, over}

	observed, err := p.Parse(rowsFor(specs...), util.BoardHTML(specs...), time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 3)

	recess := observed[0].Court
	assert.Equal(t, board.StatusRecess, recess.CaseStatus)
	assert.Equal(t, board.CaseTypeRecess, recess.CaseType)
	assert.Equal(t, "WP/44/2026", recess.CaseNumber)
	require.NotNil(t, recess.QueuePosition)
	assert.Equal(t, 2, *recess.QueuePosition)
	assert.False(t, recess.IsLive)
	assert.True(t, recess.IsActive, "recess courts stay active without a live stream")

	blank := observed[1].Court
	assert.Equal(t, board.StatusNone, blank.CaseStatus)
	assert.Equal(t, board.CaseTypeNone, blank.CaseType)
	assert.Empty(t, blank.CaseNumber)
	require.NotNil(t, blank.QueuePosition)
	assert.Equal(t, 9, *blank.QueuePosition)
	assert.False(t, blank.IsActive)

	done := observed[2].Court
	assert.Equal(t, board.StatusSittingOver, done.CaseStatus)
	assert.Equal(t, board.CaseTypeSittingOver, done.CaseType)
	assert.Empty(t, done.CaseNumber)
	assert.Nil(t, done.QueuePosition)
	assert.False(t, done.IsActive)
}

func TestParseDropsOrphanRows(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)

	kept := util.InSessionSpec("1", "SCA/9/2025")
	orphan := util.InSessionSpec("2", "SCA/10/2025")
	orphan.OmitCard = true

	rows := rowsFor(kept, orphan)
	rows = append(rows, fetch.Row{CaseInfo: "STRAY", GSrNo: "SR 1"})

	observed, err := p.Parse(rows, util.BoardHTML(kept, orphan), time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 1)
	assert.Equal(t, "1", observed[0].Court.CourtCode)
}

func TestParseDivisionBench(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)
	spec := util.InSessionSpec("7", "LPA/3/2026")
	spec.Photos = []string{"./photos/a.jpg", "./photos/b.jpg"}

	observed, err := p.Parse(rowsFor(spec), util.BoardHTML(spec), time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 1)
	c := observed[0].Court
	assert.Equal(t, board.DivisionBench, c.BenchType)
	assert.Equal(t, 2, c.JudgeCount)
	assert.Equal(t, []string{
		"https://courts.example.org/streamingboard/photos/a.jpg",
		"https://courts.example.org/streamingboard/photos/b.jpg",
	}, c.JudgePhotos)
}

func TestParseJudgeNameFallback(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)
	page := `<html><body>
	<div class="card" id="dv_8">
	  <div class="card-header" id="court_8">Court No.8</div>
	  <div class="card-title">HON'BLE JUSTICE B. FALLBACK [Live]</div>
	</div></body></html>`

	observed, err := p.Parse([]fetch.Row{{CourtCode: "8", CaseInfo: "-"}}, page, time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 1)
	c := observed[0].Court
	// No .card-category b on this card, so the header-ish fallback wins and
	// the live marker is trimmed.
	assert.Equal(t, "Court No.8", c.JudgeName)
	assert.Equal(t, "8", c.CourtNumber)
	assert.Nil(t, c.QueuePosition)

	pageTitleOnly := `<html><body>
	<div class="card" id="dv_9">
	  <div class="card-title">HON'BLE JUSTICE B. FALLBACK [Live]</div>
	</div></body></html>`
	observed, err = p.Parse([]fetch.Row{{CourtCode: "9", CaseInfo: "-"}}, pageTitleOnly, time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 1)
	assert.Equal(t, "HON'BLE JUSTICE B. FALLBACK", observed[0].Court.JudgeName)
	assert.Empty(t, observed[0].Court.CourtNumber)
}

func TestParseStreamURLResolution(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)

	tests := []struct {
		name string
		href string
		want string
	}{
		{"origin relative", "/live/watch?court=5", "https://courts.example.org/live/watch?court=5"},
		{"absolute", "https://cdn.example.net/live/5", "https://cdn.example.net/live/5"},
		{"missing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := util.InSessionSpec("5", "SCA/1/2024")
			spec.StreamHref = tt.href
			observed, err := p.Parse(rowsFor(spec), util.BoardHTML(spec), time.Now())
			require.NoError(t, err)
			require.Len(t, observed, 1)
			assert.Equal(t, tt.want, observed[0].Court.StreamURL)
			assert.Equal(t, tt.want != "", observed[0].Court.HasStream)
		})
	}
}

func TestParsePhotoSources(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)
	page := `<html><body>
	<div class="card" id="dv_2">
	  <img class="photoclass" data-src="./photos/lazy.jpg"/>
	  <img src="https://cdn.example.net/pics/j.png"/>
	  <img src=""/>
	</div></body></html>`

	observed, err := p.Parse([]fetch.Row{{CourtCode: "2", CaseInfo: "-"}}, page, time.Now())
	require.NoError(t, err)
	require.Len(t, observed, 1)
	assert.Equal(t, []string{
		"https://courts.example.org/streamingboard/photos/lazy.jpg",
		"https://cdn.example.net/pics/j.png",
	}, observed[0].Court.JudgePhotos)
}

func TestQueuePositionExtraction(t *testing.T) {
	tests := []struct {
		srNo string
		want *int
	}{
		{"SR 7", board.IntPtr(7)},
		{"No. 12 of the list", board.IntPtr(12)},
		{"40", board.IntPtr(40)},
		{"", nil},
		{"awaiting", nil},
	}
	for _, tt := range tests {
		t.Run(tt.srNo, func(t *testing.T) {
			got := queuePosition(tt.srNo)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestObservationSignatureTracksRawFooter(t *testing.T) {
	p, err := New(basePage)
	require.NoError(t, err)
	spec := util.InSessionSpec("5", "SCA/1/2024")
	page := util.BoardHTML(spec)

	first, err := p.Parse(rowsFor(spec), page, time.Now())
	require.NoError(t, err)
	again, err := p.Parse(rowsFor(spec), page, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, again, 1)

	sig := first[0].Signature()
	assert.Equal(t, board.HashHTML(first[0].InnerHTML), sig.HTMLHash)
	assert.Equal(t, "SCA/1/2024", sig.CaseFooter)
	assert.Equal(t, "SR 1", sig.SrNo)
	// Re-scraping an identical board at a later instant must not register as
	// change.
	assert.True(t, sig.Equal(again[0].Signature()))

	moved := spec
	moved.CaseInfo = "SCA/1/2024 (RECESS)"
	next, err := p.Parse(rowsFor(moved), util.BoardHTML(moved), time.Now())
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.False(t, sig.Equal(next[0].Signature()))
	assert.Equal(t, "SCA/1/2024 (RECESS)", next[0].RawFooter)
}
