// Package iface defines the database interface used by the courtwatch node,
// also containing a scoped ReadOnlyDatabase for components that must never
// write, such as the read API.
package iface

import (
	"context"
	"io"
	"time"

	"github.com/courtwatch/courtwatch/board"
)

// ReadOnlyDatabase defines a struct which only has read access to database methods.
type ReadOnlyDatabase interface {
	// Durable board view.
	CurrentCourt(ctx context.Context, courtCode string) (*board.CurrentCourt, error)
	CurrentCourts(ctx context.Context) ([]*board.CurrentCourt, error)
	VisibleCourts(ctx context.Context) ([]*board.CurrentCourt, error)
	// Watchlists.
	Watchlist(ctx context.Context, id string) (*board.Watchlist, error)
	ActiveWatchlists(ctx context.Context) ([]*board.Watchlist, error)
	WatchlistsByDevice(ctx context.Context, deviceID string) ([]*board.Watchlist, error)
	// Case records.
	CaseHistories(ctx context.Context, caseNumber string, limit int) ([]*board.CaseHistory, error)
	CaseStatistics(ctx context.Context, caseNumber string) (*board.CaseStatistics, error)
	// Devices and deliveries.
	Device(ctx context.Context, deviceID string) (*board.Device, error)
	NotificationsByDevice(ctx context.Context, deviceID string) ([]*board.NotificationLog, error)
	// Snapshots.
	LatestSnapshot(ctx context.Context) (*board.Snapshot, error)
	DatabasePath() string
}

// Database defines the full board database, with the write methods used by
// the tick pipeline and the api glue.
type Database interface {
	io.Closer
	ReadOnlyDatabase

	// Durable board view.
	SaveCurrentCourts(ctx context.Context, entries []*board.CurrentCourt) error
	TouchCurrentCourts(ctx context.Context, courtCodes []string, checkedAt time.Time) error
	MarkCourtsMissing(ctx context.Context, courtCodes []string) error
	// Watchlists.
	CreateWatchlist(ctx context.Context, w *board.Watchlist) (string, error)
	SaveWatchlist(ctx context.Context, w *board.Watchlist) error
	DeactivateWatchlist(ctx context.Context, id string) error
	// Case records.
	SaveCaseHistories(ctx context.Context, entries []*board.CaseHistory) (int, error)
	RecordCaseObservation(ctx context.Context, h *board.CaseHistory) error
	AdjustWatchCount(ctx context.Context, caseNumber string, delta int) error
	// Devices and deliveries.
	SaveDevice(ctx context.Context, d *board.Device) error
	RecordNotification(ctx context.Context, n *board.NotificationLog) error
	PruneNotificationLogs(ctx context.Context, before time.Time) (int, error)
	// Snapshots.
	SaveSnapshot(ctx context.Context, snap *board.Snapshot) error
	PruneSnapshots(ctx context.Context, before time.Time) (int, error)
	UpdateBucketStats(ctx context.Context) error

	Backup(ctx context.Context, outputDir string, permissionOverride bool) error
	ClearDB() error
}
