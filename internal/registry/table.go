package registry

import (
	"sync"
	"time"

	"github.com/BibekPathak/shark-db/internal/store"
)

// Table pairs a name with the ordered key store it exclusively owns, plus the
// admission gate used to coordinate operations with drop. Lifecycle:
// active -> dropping (no new admissions, in-flight drain) -> gone.
type Table struct {
	mu        sync.Mutex
	name      string
	createdAt time.Time
	refs      int
	dropping  bool
	drained   chan struct{}

	store *store.Store
}

func newTable(name string) *Table {
	return &Table{
		name:      name,
		createdAt: time.Now(),
		store:     store.New(),
	}
}

// Name returns the table's current name.
func (t *Table) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// CreatedAt returns the table's creation time.
func (t *Table) CreatedAt() time.Time {
	return t.createdAt
}

// Store returns the table's ordered key store. Callers must hold an
// admission obtained through Acquire.
func (t *Table) Store() *store.Store {
	return t.store
}

// Acquire admits one operation. It fails with ErrTableNotFound once the
// table is dropping, so racing operations resolve deterministically instead
// of observing a half-dropped table.
func (t *Table) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dropping {
		return ErrTableNotFound
	}
	t.refs++
	return nil
}

// Release ends an admission taken with Acquire.
func (t *Table) Release() {
	t.mu.Lock()
	t.refs--
	if t.dropping && t.refs == 0 && t.drained != nil {
		close(t.drained)
		t.drained = nil
	}
	t.mu.Unlock()
}

// beginDrop transitions the table to dropping and returns a channel that is
// closed once all in-flight admissions release. Returns false if the table
// is already dropping.
func (t *Table) beginDrop() (<-chan struct{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dropping {
		return nil, false
	}
	t.dropping = true
	ch := make(chan struct{})
	if t.refs == 0 {
		close(ch)
	} else {
		t.drained = ch
	}
	return ch, true
}

func (t *Table) setName(name string) {
	t.mu.Lock()
	t.name = name
	t.mu.Unlock()
}
