// Package cache provides the two read-through sqlite caches the Environment
// Builder and Validator rely on to make repeated pipeline runs idempotent:
// the gold test-outcome report, keyed by image_name(), and the image-build
// digest, keyed by a hash of the container recipe text plus the mirror
// commit SHA. Grounded on the teacher's internal/store/local.go
// (sql.Open + CREATE TABLE IF NOT EXISTS schema-on-open pattern).
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"swesmith/internal/logging"
	"swesmith/internal/mangle"
)

// Cache is a sqlite-backed store for gold reports and image-build digests.
// Safe for concurrent use.
type Cache struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	c := &Cache{db: db}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Get(logging.CategoryCache).Info("opened cache at %s", path)
	return c, nil
}

func (c *Cache) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS gold_reports (
		image_name TEXT PRIMARY KEY,
		report_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS image_builds (
		digest TEXT PRIMARY KEY,
		image_name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("cache: initialize schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GoldReport returns the cached gold test-outcome report for imageName, or
// ok=false if no report has been cached yet.
func (c *Cache) GoldReport(imageName string) (report map[string]mangle.Outcome, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var reportJSON string
	row := c.db.QueryRow(`SELECT report_json FROM gold_reports WHERE image_name = ?`, imageName)
	if err := row.Scan(&reportJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: read gold report %s: %w", imageName, err)
	}
	var m map[string]mangle.Outcome
	if err := json.Unmarshal([]byte(reportJSON), &m); err != nil {
		return nil, false, fmt.Errorf("cache: decode gold report %s: %w", imageName, err)
	}
	return m, true, nil
}

// PutGoldReport caches report under imageName, overwriting any prior entry.
func (c *Cache) PutGoldReport(imageName string, report map[string]mangle.Outcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("cache: encode gold report %s: %w", imageName, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO gold_reports (image_name, report_json) VALUES (?, ?)
		 ON CONFLICT(image_name) DO UPDATE SET report_json = excluded.report_json`,
		imageName, string(b),
	)
	if err != nil {
		return fmt.Errorf("cache: write gold report %s: %w", imageName, err)
	}
	return nil
}

// ImageDigest computes the image-build cache key from the recipe text and
// the mirror commit SHA, per spec §4.1's "image build is cached by digest
// of the recipe text plus the mirror commit SHA."
func ImageDigest(recipeText, mirrorCommit string) string {
	h := sha256.Sum256([]byte(recipeText + "\x00" + mirrorCommit))
	return hex.EncodeToString(h[:])
}

// HasImage reports whether an image has already been built for digest.
func (c *Cache) HasImage(digest string) (imageName string, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(`SELECT image_name FROM image_builds WHERE digest = ?`, digest)
	if err := row.Scan(&imageName); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache: read image build %s: %w", digest, err)
	}
	return imageName, true, nil
}

// PutImage records that imageName was built for digest.
func (c *Cache) PutImage(digest, imageName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO image_builds (digest, image_name) VALUES (?, ?)
		 ON CONFLICT(digest) DO UPDATE SET image_name = excluded.image_name`,
		digest, imageName,
	)
	if err != nil {
		return fmt.Errorf("cache: write image build %s: %w", digest, err)
	}
	return nil
}
