package store

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := New()
	created, err := s.Put([]byte("alice"), []byte("v1"))
	if err != nil || !created {
		t.Fatalf("put: created=%v err=%v", created, err)
	}
	v, ok := s.Get([]byte("alice"))
	if !ok || string(v) != "v1" {
		t.Fatalf("get: %q ok=%v", v, ok)
	}
	created, err = s.Put([]byte("alice"), []byte("v2"))
	if err != nil || created {
		t.Fatalf("update reported created=%v err=%v", created, err)
	}
	v, _ = s.Get([]byte("alice"))
	if string(v) != "v2" {
		t.Fatalf("got %q", v)
	}
	if !s.Delete([]byte("alice")) {
		t.Fatal("delete: expected existed")
	}
	if s.Delete([]byte("alice")) {
		t.Fatal("second delete: expected not existed")
	}
	if _, ok := s.Get([]byte("alice")); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestStore_EmptyKeyRejected(t *testing.T) {
	s := New()
	if _, err := s.Put(nil, []byte("v")); err != ErrInvalidKey {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Put([]byte{}, []byte("v")); err != ErrInvalidKey {
		t.Fatalf("err = %v", err)
	}
	count, total := s.Size()
	if count != 0 || total != 0 {
		t.Fatalf("stats moved: %d %d", count, total)
	}
}

func TestStore_ScanOrderStartLimit(t *testing.T) {
	s := New()
	for _, k := range []string{"dave", "alice", "charlie", "bob"} {
		s.Put([]byte(k), []byte("v-"+k))
	}

	all := s.Scan(nil, 0)
	want := []string{"alice", "bob", "charlie", "dave"}
	if len(all) != 4 {
		t.Fatalf("scan: %d entries", len(all))
	}
	for i, e := range all {
		if string(e.Key) != want[i] {
			t.Fatalf("order: got %q at %d", e.Key, i)
		}
	}

	limited := s.Scan(nil, 2)
	if len(limited) != 2 || string(limited[0].Key) != "alice" || string(limited[1].Key) != "bob" {
		t.Fatalf("limit: %v", limited)
	}

	from := s.Scan([]byte("bob"), 0)
	if len(from) != 3 || string(from[0].Key) != "bob" {
		t.Fatalf("start: %v", from)
	}
}

func TestStore_ScanIsSnapshot(t *testing.T) {
	s := New()
	s.Put([]byte("a"), []byte("1"))
	s.Put([]byte("b"), []byte("2"))
	snap := s.Scan(nil, 0)
	s.Put([]byte("c"), []byte("3"))
	s.Delete([]byte("a"))
	if len(snap) != 2 || string(snap[0].Key) != "a" {
		t.Fatalf("snapshot changed: %v", snap)
	}
}

func TestStore_PrefixScan(t *testing.T) {
	s := New()
	for _, k := range []string{"alice", "bob", "alfred", "al", "b"} {
		s.Put([]byte(k), []byte(k))
	}
	got := s.PrefixScan([]byte("al"), 0)
	want := []string{"al", "alfred", "alice"}
	if len(got) != len(want) {
		t.Fatalf("prefix: %v", got)
	}
	for i := range want {
		if string(got[i].Key) != want[i] {
			t.Fatalf("prefix order: got %q want %q", got[i].Key, want[i])
		}
	}
	if n := len(s.PrefixScan([]byte("a"), 2)); n != 2 {
		t.Fatalf("prefix limit: %d", n)
	}
	if n := len(s.PrefixScan([]byte("z"), 0)); n != 0 {
		t.Fatalf("no-match prefix: %d", n)
	}
}

func TestStore_PrefixSuccessor(t *testing.T) {
	if got := prefixSuccessor([]byte("ab")); !bytes.Equal(got, []byte("ac")) {
		t.Fatalf("got %q", got)
	}
	if got := prefixSuccessor([]byte{'a', 0xFF}); !bytes.Equal(got, []byte{'b'}) {
		t.Fatalf("got %v", got)
	}
	if got := prefixSuccessor([]byte{0xFF, 0xFF}); got != nil {
		t.Fatalf("got %v", got)
	}
	// All-0xFF prefix is unbounded: every prefixed key is included.
	s := New()
	s.Put([]byte{0xFF, 0xFF, 0x01}, []byte("v"))
	if n := len(s.PrefixScan([]byte{0xFF, 0xFF}, 0)); n != 1 {
		t.Fatalf("unbounded prefix scan: %d", n)
	}
}

func TestStore_StatsDeltas(t *testing.T) {
	s := New()
	s.Put([]byte("alice"), []byte("12345"))
	count, total := s.Size()
	if count != 1 || total != 5 {
		t.Fatalf("after insert: %d %d", count, total)
	}
	s.Put([]byte("alice"), []byte("12"))
	count, total = s.Size()
	if count != 1 || total != 2 {
		t.Fatalf("after update: %d %d", count, total)
	}
	s.Delete([]byte("alice"))
	count, total = s.Size()
	if count != 0 || total != 0 {
		t.Fatalf("after delete: %d %d", count, total)
	}

	s.Put([]byte("m"), []byte("v"))
	s.Put([]byte("a"), []byte("v"))
	s.Put([]byte("z"), []byte("v"))
	st := s.Stats()
	if st.MinKey != "a" || st.MaxKey != "z" || st.Count != 3 {
		t.Fatalf("stats: %+v", st)
	}
	if st.LastModified.IsZero() {
		t.Fatal("last modified not set")
	}
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.Put([]byte("k"), []byte("v"))
	s.Reset()
	if _, ok := s.Get([]byte("k")); ok {
		t.Fatal("key survived reset")
	}
	count, total := s.Size()
	if count != 0 || total != 0 {
		t.Fatalf("stats survived reset: %d %d", count, total)
	}
}

func TestStore_ConcurrentDisjointWriters(t *testing.T) {
	s := New()
	writers := 8
	perWriter := 500
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				k := []byte(fmt.Sprintf("w%d-%04d", w, i))
				if _, err := s.Put(k, k); err != nil {
					t.Errorf("put: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	count, _ := s.Size()
	if count != writers*perWriter {
		t.Fatalf("lost updates: %d", count)
	}
	for w := 0; w < writers; w++ {
		for i := 0; i < perWriter; i++ {
			k := []byte(fmt.Sprintf("w%d-%04d", w, i))
			if _, ok := s.Get(k); !ok {
				t.Fatalf("missing %q", k)
			}
		}
	}
}
