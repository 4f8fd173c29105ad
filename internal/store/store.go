// Package store implements one table's ordered key space: an in-memory
// B+Tree wrapped with a read-write lock and incrementally maintained
// statistics. Keys and values are opaque byte slices; ordering is
// bytes.Compare.
package store

import (
	"bytes"
	"sync"
	"time"
)

// Entry is a key-value pair produced by scans.
type Entry struct {
	Key   []byte
	Value []byte
}

// Stats is a point-in-time statistics snapshot for one table.
type Stats struct {
	Count        int       `json:"count"`
	TotalBytes   int64     `json:"total_bytes"`
	LastModified time.Time `json:"last_modified"`
	Height       int       `json:"height"`
	MinKey       string    `json:"min_key"`
	MaxKey       string    `json:"max_key"`
}

// Store serializes access to a B+Tree: reads share the lock, writes hold it
// exclusively. Scans copy the matching entries out under the read lock, so a
// returned slice is a consistent snapshot unaffected by later writes.
type Store struct {
	mu       sync.RWMutex
	tree     *BTree
	count    int
	bytes    int64
	modified time.Time
}

func New() *Store {
	return &Store{tree: NewBTree()}
}

// Put inserts or replaces key. It reports whether the key was newly created.
func (s *Store) Put(key, value []byte) (created bool, err error) {
	if len(key) == 0 {
		return false, ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.tree.Put(key, value)
	if existed {
		s.bytes += int64(len(value)) - int64(len(prev))
	} else {
		s.count++
		s.bytes += int64(len(value))
	}
	s.modified = time.Now()
	return !existed, nil
}

// Get returns the value for key, or false if the key is absent.
func (s *Store) Get(key []byte) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Get(key)
}

// Exists reports whether key is present.
func (s *Store) Exists(key []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tree.Get(key)
	return ok
}

// Delete removes key if present. Deleting an absent key is not an error and
// leaves statistics untouched.
func (s *Store) Delete(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.tree.Delete(key)
	if existed {
		s.count--
		s.bytes -= int64(len(prev))
		s.modified = time.Now()
	}
	return existed
}

// Scan returns entries with key >= start in ascending order, at most limit
// entries when limit > 0. A nil start scans from the beginning.
func (s *Store) Scan(start []byte, limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	s.tree.Ascend(start, func(k, v []byte) bool {
		out = append(out, Entry{Key: k, Value: v})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// PrefixScan returns, in ascending order, every entry whose key starts with
// prefix, bounded by the smallest key greater than all prefixed keys. At most
// limit entries when limit > 0.
func (s *Store) PrefixScan(prefix []byte, limit int) []Entry {
	end := prefixSuccessor(prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	s.tree.Ascend(prefix, func(k, v []byte) bool {
		if end != nil && bytes.Compare(k, end) >= 0 {
			return false
		}
		out = append(out, Entry{Key: k, Value: v})
		return limit <= 0 || len(out) < limit
	})
	return out
}

// prefixSuccessor returns the smallest key strictly greater than every key
// having prefix as a prefix, or nil if no such bound exists (all-0xFF prefix).
func prefixSuccessor(prefix []byte) []byte {
	for i := len(prefix) - 1; i >= 0; i-- {
		if prefix[i] != 0xFF {
			end := make([]byte, i+1)
			copy(end, prefix[:i+1])
			end[i]++
			return end
		}
	}
	return nil
}

// Size returns the current entry count and aggregate value bytes.
func (s *Store) Size() (count int, totalBytes int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, s.bytes
}

// Stats returns a consistent statistics snapshot.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Count:        s.count,
		TotalBytes:   s.bytes,
		LastModified: s.modified,
		Height:       s.tree.Height(),
		MinKey:       string(s.tree.MinKey()),
		MaxKey:       string(s.tree.MaxKey()),
	}
}

// Reset drops all entries and statistics, keeping the store usable.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = NewBTree()
	s.count = 0
	s.bytes = 0
	s.modified = time.Now()
}

// Dump returns every entry in order. Used by the snapshot layer.
func (s *Store) Dump() []Entry {
	return s.Scan(nil, 0)
}

// Load bulk-inserts entries, replacing existing keys. Used by the snapshot
// layer; entries need not be sorted.
func (s *Store) Load(entries []Entry) error {
	for _, e := range entries {
		if _, err := s.Put(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
