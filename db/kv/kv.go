// Package kv defines a persistent, embedded key-value store for the
// courtwatch node, implementing the board database interface on BoltDB.
package kv

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	// BoardNodeDbDirName is the name of the directory containing the board
	// node database, nested inside the node's data directory.
	BoardNodeDbDirName = "boarddata"

	databaseFileName = "courtwatch.db"
	boltAllocSize    = 8 * 1024 * 1024
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found in db")

// Store defines an implementation of the board Database interface using
// BoltDB as the underlying persistent kv-store.
type Store struct {
	db           *bolt.DB
	databasePath string
}

// NewKVStore initializes a new boltDB key-value store at the directory
// path specified, creates the kv-buckets based on the schema, and stores
// an open connection db object as a property of the Store struct.
func NewKVStore(ctx context.Context, dirPath string) (*Store, error) {
	hasDir, err := fileExists(dirPath)
	if err != nil {
		return nil, err
	}
	if !hasDir {
		if err := os.MkdirAll(dirPath, 0700); err != nil {
			return nil, err
		}
	}
	datafile := path.Join(dirPath, databaseFileName)
	boltDB, err := bolt.Open(datafile, 0600, &bolt.Options{
		Timeout:         1 * time.Second,
		InitialMmapSize: 10e6,
	})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	boltDB.AllocSize = boltAllocSize

	kv := &Store{
		db:           boltDB,
		databasePath: dirPath,
	}

	if err := kv.db.Update(func(tx *bolt.Tx) error {
		return createBuckets(
			tx,
			currentCourtsBucket,
			watchlistsBucket,
			watchlistActiveIndexBucket,
			caseHistoryBucket,
			caseStatisticsBucket,
			devicesBucket,
			notificationLogsBucket,
			snapshotsBucket,
		)
	}); err != nil {
		return nil, err
	}

	return kv, nil
}

// ClearDB removes the previously stored database in the data directory.
func (s *Store) ClearDB() error {
	if _, err := os.Stat(s.databasePath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path.Join(s.databasePath, databaseFileName))
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DatabasePath at which this database writes files.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

func createBuckets(tx *bolt.Tx, buckets ...[]byte) error {
	for _, bucket := range buckets {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return err
		}
	}
	return nil
}

func fileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
