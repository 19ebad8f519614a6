// Package catalog is a supplemental SQLite-backed ledger of analyzed
// videos. It is not part of the per-video binary FrameHashes artifact the
// store package writes; it's an additional cross-run record an Analyzer can
// consult to report what it has already seen, independent of whether the
// sidecar file for a given path is still present on disk.
package catalog

import (
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aksiksi/needle/pkg/needle"
)

const DefaultDBFile = "needle.catalog.sqlite3"

// Entry is one analyzed video's row in the catalog.
type Entry struct {
	Path           string `gorm:"primaryKey"`
	HeaderChecksum string `gorm:"index:idx_checksum"`
	DurationSec    float64
	AnalyzedAt     time.Time
}

// Catalog is a thin wrapper around a gorm/SQLite connection tracking Entry
// rows.
type Catalog struct {
	db *gorm.DB
}

// Open creates (if needed) and migrates the catalog database at dbPath.
func Open(dbPath string) (*Catalog, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, needle.Wrap(needle.IOError, err, "catalog: creating db dir for %s", dbPath)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, needle.Wrap(needle.IOError, err, "catalog: opening %s", dbPath)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, needle.Wrap(needle.IOError, err, "catalog: migrating %s", dbPath)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, needle.Wrap(needle.IOError, err, "catalog: unwrapping sql.DB for %s", dbPath)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Catalog{db: db}, nil
}

// Upsert records (or updates) one video's analysis result.
func (c *Catalog) Upsert(path, checksumHex string, durationSec float64) error {
	entry := Entry{Path: path, HeaderChecksum: checksumHex, DurationSec: durationSec, AnalyzedAt: time.Now()}
	return c.db.Save(&entry).Error
}

// Lookup returns the catalog row for path, if any.
func (c *Catalog) Lookup(path string) (*Entry, bool, error) {
	var entry Entry
	err := c.db.First(&entry, "path = ?", path).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &entry, true, nil
}

// Close releases the underlying database connection.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
