package queue

import (
	"testing"

	"github.com/courtwatch/courtwatch/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func court(number, caseNumber string, status board.CaseStatus, position *int) *board.Court {
	return &board.Court{
		CourtCode:     number,
		CourtNumber:   number,
		CaseNumber:    caseNumber,
		CaseStatus:    status,
		QueuePosition: position,
	}
}

func TestBuildGroupsAndSortsPending(t *testing.T) {
	courts := []*board.Court{
		court("5", "SCA/1/2024", board.StatusInSession, board.IntPtr(1)),
		court("5", "WP/9/2026", board.StatusRecess, board.IntPtr(8)),
		court("5", "WP/2/2026", board.StatusRecess, board.IntPtr(3)),
		court("5", "", board.StatusNone, board.IntPtr(5)),
		court("7", "LPA/4/2026", board.StatusSittingOver, nil),
	}
	// A court number the parser could not extract never joins a queue.
	courts = append(courts, court("", "GHOST/1/2026", board.StatusRecess, board.IntPtr(2)))

	queues := Build(courts)
	require.Len(t, queues, 2)

	five := queues["5"]
	require.NotNil(t, five)
	require.NotNil(t, five.CurrentCase)
	assert.Equal(t, "SCA/1/2024", five.CurrentCase.CaseNumber)
	require.Len(t, five.Pending, 3)
	assert.Equal(t, "WP/2/2026", five.Pending[0].CaseNumber)
	assert.Equal(t, "", five.Pending[1].CaseNumber)
	assert.Equal(t, "WP/9/2026", five.Pending[2].CaseNumber)

	seven := queues["7"]
	require.NotNil(t, seven)
	assert.Nil(t, seven.CurrentCase)
	assert.Empty(t, seven.Pending, "sitting-over courts never wait in line")
}

func TestBuildExcludesInSessionFromPending(t *testing.T) {
	queues := Build([]*board.Court{
		court("5", "SCA/1/2024", board.StatusInSession, board.IntPtr(1)),
	})
	require.NotNil(t, queues["5"])
	assert.Empty(t, queues["5"].Pending)
	require.NotNil(t, queues["5"].CurrentCase)
}

func TestPositionIsPendingIndexNotSerial(t *testing.T) {
	queues := Build([]*board.Court{
		court("5", "WP/2/2026", board.StatusRecess, board.IntPtr(4)),
		court("5", "WP/9/2026", board.StatusRecess, board.IntPtr(12)),
		court("5", "SCA/1/2024", board.StatusInSession, board.IntPtr(1)),
	})
	q := queues["5"]

	pos := q.Position("WP/2/2026")
	require.NotNil(t, pos)
	assert.Equal(t, 1, *pos, "position is the 1-based pending index, not the board serial")

	pos = q.Position("WP/9/2026")
	require.NotNil(t, pos)
	assert.Equal(t, 2, *pos)

	assert.Nil(t, q.Position("SCA/1/2024"), "the case on the bench is not in line")
	assert.Nil(t, q.Position("UNKNOWN/1/2026"))
	assert.Nil(t, q.Position(""))

	var missing *Queue
	assert.Nil(t, missing.Position("WP/2/2026"))
}

func TestSortedOrdersNumerically(t *testing.T) {
	queues := Build([]*board.Court{
		court("12", "", board.StatusNone, nil),
		court("5", "", board.StatusNone, nil),
		court("COMMERCIAL", "", board.StatusNone, nil),
	})
	sorted := queues.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, "5", sorted[0].CourtNumber)
	assert.Equal(t, "12", sorted[1].CourtNumber)
	assert.Equal(t, "COMMERCIAL", sorted[2].CourtNumber)
}
