// Package db defines the ability to create a new database for the
// courtwatch node.
package db

import (
	"context"

	"github.com/courtwatch/courtwatch/db/iface"
	"github.com/courtwatch/courtwatch/db/kv"
)

// Database defines the canonical board database interface.
type Database = iface.Database

// ReadOnlyDatabase is the read-scoped view handed to the api.
type ReadOnlyDatabase = iface.ReadOnlyDatabase

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = kv.ErrNotFound

// ErrAlreadyWatching is returned when a device subscribes to a case it
// already has an active watchlist for.
var ErrAlreadyWatching = kv.ErrAlreadyWatching

// NewDB initializes a new database in the data directory.
func NewDB(ctx context.Context, dirPath string) (Database, error) {
	return kv.NewKVStore(ctx, dirPath)
}
