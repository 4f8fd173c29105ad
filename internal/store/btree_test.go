package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

func TestBTree_PutGet(t *testing.T) {
	tr := NewBTree()
	if _, ok := tr.Get([]byte("a")); ok {
		t.Fatal("expected miss on empty tree")
	}
	if _, existed := tr.Put([]byte("a"), []byte("1")); existed {
		t.Fatal("expected new key")
	}
	v, ok := tr.Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
	prev, existed := tr.Put([]byte("a"), []byte("2"))
	if !existed || string(prev) != "1" {
		t.Fatalf("replace: prev=%q existed=%v", prev, existed)
	}
	v, _ = tr.Get([]byte("a"))
	if string(v) != "2" {
		t.Fatalf("got %q", v)
	}
}

func TestBTree_SplitsKeepOrder(t *testing.T) {
	tr := NewBTree()
	n := 10000
	perm := rand.New(rand.NewSource(1)).Perm(n)
	for _, i := range perm {
		k := []byte(fmt.Sprintf("key-%06d", i))
		tr.Put(k, k)
	}
	if tr.Height() < 2 {
		t.Fatalf("expected splits, height=%d", tr.Height())
	}
	var last []byte
	count := 0
	tr.Ascend(nil, func(k, v []byte) bool {
		if last != nil && bytes.Compare(last, k) >= 0 {
			t.Fatalf("out of order: %q then %q", last, k)
		}
		if !bytes.Equal(k, v) {
			t.Fatalf("value mismatch at %q", k)
		}
		last = append(last[:0], k...)
		count++
		return true
	})
	if count != n {
		t.Fatalf("count: got %d want %d", count, n)
	}
}

func TestBTree_AscendFromStart(t *testing.T) {
	tr := NewBTree()
	for _, k := range []string{"alice", "bob", "charlie", "dave"} {
		tr.Put([]byte(k), []byte(k))
	}
	var got []string
	tr.Ascend([]byte("bob"), func(k, _ []byte) bool {
		got = append(got, string(k))
		return true
	})
	want := []string{"bob", "charlie", "dave"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	// Start key between entries resolves to the next larger key.
	got = got[:0]
	tr.Ascend([]byte("bz"), func(k, _ []byte) bool {
		got = append(got, string(k))
		return true
	})
	if len(got) != 2 || got[0] != "charlie" {
		t.Fatalf("got %v", got)
	}
}

func TestBTree_Delete(t *testing.T) {
	tr := NewBTree()
	for i := 0; i < 2000; i++ {
		k := []byte(fmt.Sprintf("k%05d", i))
		tr.Put(k, k)
	}
	for i := 0; i < 2000; i += 2 {
		k := []byte(fmt.Sprintf("k%05d", i))
		if _, existed := tr.Delete(k); !existed {
			t.Fatalf("delete %q: not found", k)
		}
	}
	if _, existed := tr.Delete([]byte("k00000")); existed {
		t.Fatal("double delete reported existed")
	}
	count := 0
	tr.Ascend(nil, func(k, _ []byte) bool {
		count++
		if _, ok := tr.Get(k); !ok {
			t.Fatalf("survivor %q unreadable", k)
		}
		return true
	})
	if count != 1000 {
		t.Fatalf("count: got %d", count)
	}
	if string(tr.MinKey()) != "k00001" {
		t.Fatalf("min: %q", tr.MinKey())
	}
	if string(tr.MaxKey()) != "k01999" {
		t.Fatalf("max: %q", tr.MaxKey())
	}
}

func TestBTree_MinMaxEmpty(t *testing.T) {
	tr := NewBTree()
	if tr.MinKey() != nil || tr.MaxKey() != nil {
		t.Fatal("expected nil min/max on empty tree")
	}
}
