package kv

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"go.opencensus.io/trace"
)

var log = logrus.WithField("prefix", "db")

const backupsDirectoryName = "backups"

// Backup the database to the datadir backup directory, or to outputDir when
// one is provided. Example: $DATADIR/backups/courtwatch_boarddb_1712345678.backup
func (s *Store) Backup(ctx context.Context, outputDir string, permissionOverride bool) error {
	ctx, span := trace.StartSpan(ctx, "BoardDB.Backup")
	defer span.End()

	backupsDir := path.Join(s.databasePath, backupsDirectoryName)
	if outputDir != "" {
		backupsDir = outputDir
	}
	// Ensure the backups directory exists.
	if err := os.MkdirAll(backupsDir, 0700); err != nil {
		return err
	}
	backupPath := path.Join(backupsDir, fmt.Sprintf("courtwatch_boarddb_%d.backup", time.Now().Unix()))
	log.WithField("backup", backupPath).Info("Writing backup database")

	perms := os.FileMode(0600)
	if permissionOverride {
		perms = 0666
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(backupPath, perms)
	})
}
