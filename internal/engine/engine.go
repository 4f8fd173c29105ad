// Package engine exposes sharkDB's operations: table lifecycle, point
// reads/writes, ordered and prefix scans, and per-table statistics. It
// resolves names through the registry, admits each operation through the
// table's lifecycle gate, and keeps the optional catalog and snapshot
// layers in step with mutations.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BibekPathak/shark-db/internal/catalog"
	"github.com/BibekPathak/shark-db/internal/persistence"
	"github.com/BibekPathak/shark-db/internal/registry"
	"github.com/BibekPathak/shark-db/internal/store"
	"github.com/BibekPathak/shark-db/pkg/log"
)

// Options configures an Engine. Catalog and Snapshots are optional; with
// neither the engine is fully in-memory.
type Options struct {
	Catalog         *catalog.Catalog
	Snapshots       *persistence.Snapshotter
	SnapshotOnClose bool
}

type Engine struct {
	reg    *registry.Registry
	cat    *catalog.Catalog
	snaps  *persistence.Snapshotter
	snapOnClose bool
	logger zerolog.Logger
}

func New(opts Options) *Engine {
	return &Engine{
		reg:         registry.New(),
		cat:         opts.Catalog,
		snaps:       opts.Snapshots,
		snapOnClose: opts.SnapshotOnClose,
		logger:      log.Engine,
	}
}

// Restore recreates tables recorded in the catalog and loads any snapshots
// present for them. Tables with a snapshot but no catalog entry are restored
// too, so a dump survives a lost catalog.
func (e *Engine) Restore() error {
	names := map[string]bool{}
	if e.cat != nil {
		recorded, err := e.cat.Tables()
		if err != nil {
			return fmt.Errorf("engine: restore: %w", err)
		}
		for _, n := range recorded {
			names[n] = true
		}
	}
	if e.snaps != nil {
		snapped, err := e.snaps.Tables()
		if err != nil {
			return fmt.Errorf("engine: restore: %w", err)
		}
		for _, n := range snapped {
			names[n] = true
		}
	}
	for name := range names {
		if err := e.CreateTable(name); err != nil {
			return fmt.Errorf("engine: restore %q: %w", name, err)
		}
		if e.snaps == nil {
			continue
		}
		entries, err := e.snaps.Load(name, "")
		if err == persistence.ErrSnapshotNotFound {
			continue
		}
		if err != nil {
			return fmt.Errorf("engine: restore %q: %w", name, err)
		}
		if err := e.load(name, entries); err != nil {
			return err
		}
	}
	if len(names) > 0 {
		e.logger.Info().Int("tables", len(names)).Msg("restored tables")
	}
	return nil
}

// CreateTable installs a fresh, empty table.
func (e *Engine) CreateTable(name string) error {
	if _, err := e.reg.Create(name); err != nil {
		return err
	}
	if e.cat != nil {
		if err := e.cat.Record(name); err != nil {
			// Keep registry and catalog consistent: undo the create.
			_ = e.reg.Drop(name)
			return err
		}
	}
	return nil
}

// DropTable removes the table, its catalog entry and its snapshot. In-flight
// operations drain before the call returns; racing operations observe
// ErrTableNotFound.
func (e *Engine) DropTable(name string) error {
	if err := e.reg.Drop(name); err != nil {
		return err
	}
	if e.cat != nil {
		if err := e.cat.Forget(name); err != nil {
			e.logger.Error().Err(err).Str("table", name).Msg("catalog forget failed")
		}
	}
	if e.snaps != nil {
		if err := e.snaps.Remove(name); err != nil {
			e.logger.Error().Err(err).Str("table", name).Msg("snapshot remove failed")
		}
	}
	return nil
}

// RenameTable moves a table to a new name, keeping its data and statistics.
func (e *Engine) RenameTable(oldName, newName string) error {
	if err := e.reg.Rename(oldName, newName); err != nil {
		return err
	}
	if e.cat != nil {
		if err := e.cat.Rename(oldName, newName); err != nil {
			e.logger.Error().Err(err).Str("table", oldName).Msg("catalog rename failed")
		}
	}
	if e.snaps != nil {
		// The old-name snapshot is stale; the next dump writes the new name.
		_ = e.snaps.Remove(oldName)
	}
	return nil
}

// TruncateTable removes every entry, resetting statistics.
func (e *Engine) TruncateTable(name string) error {
	return e.withTable(name, func(s *store.Store) error {
		s.Reset()
		return nil
	})
}

// ListTables returns live table names in lexicographic order.
func (e *Engine) ListTables() []string {
	return e.reg.List()
}

// Put inserts or replaces key in table. Reports whether the key was created.
func (e *Engine) Put(table string, key, value []byte) (created bool, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		created, err = s.Put(key, value)
		return err
	})
	return created, err
}

// Get returns the value for key, or ErrKeyNotFound.
func (e *Engine) Get(table string, key []byte) (value []byte, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		v, ok := s.Get(key)
		if !ok {
			return ErrKeyNotFound
		}
		value = v
		return nil
	})
	return value, err
}

// Exists reports whether key is present in table.
func (e *Engine) Exists(table string, key []byte) (exists bool, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		exists = s.Exists(key)
		return nil
	})
	return exists, err
}

// Delete removes key from table if present. Deleting an absent key is not an
// error; existed reports whether anything was removed.
func (e *Engine) Delete(table string, key []byte) (existed bool, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		existed = s.Delete(key)
		return nil
	})
	return existed, err
}

// Scan returns entries with key >= start in ascending order; at most limit
// entries when limit > 0. The result is a point-in-time snapshot.
func (e *Engine) Scan(table string, start []byte, limit int) (entries []store.Entry, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		entries = s.Scan(start, limit)
		return nil
	})
	return entries, err
}

// PrefixScan returns entries whose key starts with prefix, in order.
func (e *Engine) PrefixScan(table string, prefix []byte, limit int) (entries []store.Entry, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		entries = s.PrefixScan(prefix, limit)
		return nil
	})
	return entries, err
}

// Stats returns the table's statistics snapshot.
func (e *Engine) Stats(table string) (stats store.Stats, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		stats = s.Stats()
		return nil
	})
	return stats, err
}

// Count returns the table's entry count.
func (e *Engine) Count(table string) (count int, err error) {
	err = e.withTable(table, func(s *store.Store) error {
		count, _ = s.Size()
		return nil
	})
	return count, err
}

// DumpTable writes the table's entries to a snapshot file.
func (e *Engine) DumpTable(table, file string) error {
	if e.snaps == nil {
		return fmt.Errorf("engine: dump %q: no data directory configured", table)
	}
	return e.withTable(table, func(s *store.Store) error {
		return e.snaps.Dump(table, file, s.Dump())
	})
}

// LoadTable merges a snapshot file into the table (last write wins).
func (e *Engine) LoadTable(table, file string) error {
	if e.snaps == nil {
		return fmt.Errorf("engine: load %q: no data directory configured", table)
	}
	entries, err := e.snaps.Load(table, file)
	if err != nil {
		return err
	}
	return e.load(table, entries)
}

func (e *Engine) load(table string, entries []store.Entry) error {
	return e.withTable(table, func(s *store.Store) error {
		return s.Load(entries)
	})
}

// Close tears the engine down, optionally dumping every table first.
func (e *Engine) Close() error {
	if e.snaps != nil && e.snapOnClose {
		for _, name := range e.reg.List() {
			if err := e.DumpTable(name, ""); err != nil {
				e.logger.Error().Err(err).Str("table", name).Msg("shutdown snapshot failed")
			}
		}
	}
	e.reg.Reset()
	if e.cat != nil {
		return e.cat.Close()
	}
	return nil
}

// withTable resolves table, admits one operation through its lifecycle gate,
// and runs fn against the table's store.
func (e *Engine) withTable(table string, fn func(*store.Store) error) error {
	t, err := e.reg.Get(table)
	if err != nil {
		return err
	}
	if err := t.Acquire(); err != nil {
		return err
	}
	defer t.Release()
	return fn(t.Store())
}
