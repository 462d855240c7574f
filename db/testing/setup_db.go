// Package testing allows for spinning up a real bolt-db
// instance for unit tests throughout the courtwatch repo.
package testing

import (
	"context"
	"testing"

	"github.com/courtwatch/courtwatch/db"
	"github.com/courtwatch/courtwatch/db/kv"
)

// SetupDB instantiates and returns a database backed by a key value store in
// a per-test temp directory, closed automatically on cleanup.
func SetupDB(t testing.TB) db.Database {
	s, err := kv.NewKVStore(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return s
}
