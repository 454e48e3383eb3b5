// Package cache implements the incremental result cache
// cmd/pytypecheck's -incremental flag relies on: a file's diagnostics
// and converged-pass-count, persisted across process invocations, keyed
// by (path, content hash), so an unchanged file is not re-walked through
// the fixpoint loop on the next run.
//
// Grounded on the teacher's go.mod dependency on modernc.org/sqlite (a
// pure-Go database/sql driver, no cgo) and on mcgru-funxy's
// internal/modules package, which persists a per-module compiled-form
// cache keyed by a content digest the same way.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/funvibe/pytype/internal/diagnostics"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_results (
	path         TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	passes       INTEGER NOT NULL,
	converged    INTEGER NOT NULL,
	diagnostics  TEXT NOT NULL,
	PRIMARY KEY (path, content_hash)
);
`

// Cache wraps a single-file SQLite database holding one row per
// (path, content hash) pair ever analyzed.
type Cache struct {
	db *sql.DB
}

// Entry is a previously stored analysis result.
type Entry struct {
	Passes      int
	Converged   bool
	Diagnostics []diagnostics.Diagnostic
}

// Open creates or opens the cache database at dbPath.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Digest hashes source bytes into the content key Lookup/Store use.
func Digest(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached result for (path, hash), if one exists.
func (c *Cache) Lookup(path, hash string) (*Entry, bool, error) {
	row := c.db.QueryRow(
		`SELECT passes, converged, diagnostics FROM analysis_results WHERE path = ? AND content_hash = ?`,
		path, hash,
	)
	var passes int
	var convergedInt int
	var diagJSON string
	if err := row.Scan(&passes, &convergedInt, &diagJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: lookup %s: %w", path, err)
	}
	var diags []diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(diagJSON), &diags); err != nil {
		return nil, false, fmt.Errorf("cache: decoding cached diagnostics for %s: %w", path, err)
	}
	return &Entry{Passes: passes, Converged: convergedInt != 0, Diagnostics: diags}, true, nil
}

// Store records a fresh analysis result for (path, hash), replacing
// whatever was cached for that file under a different content hash.
func (c *Cache) Store(path, hash string, passes int, converged bool, diags []diagnostics.Diagnostic) error {
	diagJSON, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("cache: encoding diagnostics for %s: %w", path, err)
	}
	convergedInt := 0
	if converged {
		convergedInt = 1
	}
	if _, err := c.db.Exec(`DELETE FROM analysis_results WHERE path = ?`, path); err != nil {
		return fmt.Errorf("cache: evicting stale entries for %s: %w", path, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO analysis_results (path, content_hash, passes, converged, diagnostics) VALUES (?, ?, ?, ?, ?)`,
		path, hash, passes, convergedInt, string(diagJSON),
	)
	if err != nil {
		return fmt.Errorf("cache: storing %s: %w", path, err)
	}
	return nil
}
