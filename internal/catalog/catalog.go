// Package catalog persists the table directory (names and creation times)
// in a sqlite file so a restarted server can recreate its tables. Table
// data is not stored here; snapshots handle that separately.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/BibekPathak/shark-db/pkg/log"
)

var ErrCatalogClosed = errors.New("catalog: closed")

const schema = `
CREATE TABLE IF NOT EXISTS tables (
	name       TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
);`

type Catalog struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init schema: %w", err)
	}
	return &Catalog{db: db, logger: log.Persist}, nil
}

// Record registers a table name. Recording an already-known name is a no-op
// so create retries after a crash stay idempotent.
func (c *Catalog) Record(name string) error {
	if c.db == nil {
		return ErrCatalogClosed
	}
	_, err := c.db.Exec(`INSERT OR IGNORE INTO tables(name, created_at) VALUES(?, ?)`, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("catalog: record %q: %w", name, err)
	}
	return nil
}

// Forget removes a table name.
func (c *Catalog) Forget(name string) error {
	if c.db == nil {
		return ErrCatalogClosed
	}
	if _, err := c.db.Exec(`DELETE FROM tables WHERE name = ?`, name); err != nil {
		return fmt.Errorf("catalog: forget %q: %w", name, err)
	}
	return nil
}

// Rename moves a recorded name, keeping the original creation time.
func (c *Catalog) Rename(oldName, newName string) error {
	if c.db == nil {
		return ErrCatalogClosed
	}
	if _, err := c.db.Exec(`UPDATE tables SET name = ? WHERE name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("catalog: rename %q: %w", oldName, err)
	}
	return nil
}

// Tables returns the recorded table names in lexicographic order.
func (c *Catalog) Tables() ([]string, error) {
	if c.db == nil {
		return nil, ErrCatalogClosed
	}
	rows, err := c.db.Query(`SELECT name FROM tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	db := c.db
	c.db = nil
	return db.Close()
}
