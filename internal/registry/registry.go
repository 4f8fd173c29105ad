// Package registry maintains the process-wide name-to-table directory and
// the table lifecycle. The registry lock guards only the map; per-table
// admission and data locking live on Table and its store, so operations on
// one table never contend with create/drop of another.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BibekPathak/shark-db/pkg/log"
)

var (
	ErrTableNotFound = errors.New("registry: table not found")
	ErrTableExists   = errors.New("registry: table already exists")
	ErrInvalidName   = errors.New("registry: invalid table name")
)

type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	logger zerolog.Logger
}

func New() *Registry {
	return &Registry{
		tables: make(map[string]*Table),
		logger: log.Engine,
	}
}

// Create installs a fresh, empty table under name.
func (r *Registry) Create(name string) (*Table, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[name]; exists {
		return nil, ErrTableExists
	}
	t := newTable(name)
	r.tables[name] = t
	r.logger.Info().Str("table", name).Msg("table created")
	return t, nil
}

// Get resolves name to a live table handle. Handles are request-scoped: the
// table may be dropped concurrently, which subsequent Acquire calls observe.
func (r *Registry) Get(name string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// Drop removes name from the registry and blocks until in-flight operations
// on the table drain. New operations admitted after the drop begins fail
// with ErrTableNotFound.
func (r *Registry) Drop(name string) error {
	r.mu.Lock()
	t, ok := r.tables[name]
	if !ok {
		r.mu.Unlock()
		return ErrTableNotFound
	}
	drained, ok := t.beginDrop()
	if !ok {
		// A concurrent drop won the race; to this caller the table is gone.
		r.mu.Unlock()
		return ErrTableNotFound
	}
	delete(r.tables, name)
	r.mu.Unlock()

	<-drained
	r.logger.Info().Str("table", name).Msg("table dropped")
	return nil
}

// Rename moves a table to a new name. The table keeps its store and
// statistics; only the registry mapping changes.
func (r *Registry) Rename(oldName, newName string) error {
	if newName == "" {
		return ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[oldName]
	if !ok {
		return ErrTableNotFound
	}
	if _, exists := r.tables[newName]; exists {
		return ErrTableExists
	}
	delete(r.tables, oldName)
	r.tables[newName] = t
	t.setName(newName)
	r.logger.Info().Str("from", oldName).Str("to", newName).Msg("table renamed")
	return nil
}

// List returns the live table names in lexicographic order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of live tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Reset drops every table, waiting for in-flight operations. Used for test
// isolation and process shutdown.
func (r *Registry) Reset() {
	for _, name := range r.List() {
		// Ignore not-found: a concurrent drop may have beaten us.
		_ = r.Drop(name)
	}
}
