package registry

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_CreateGetDrop(t *testing.T) {
	r := New()
	if _, err := r.Create("users"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Create("users"); !errors.Is(err, ErrTableExists) {
		t.Fatalf("err = %v", err)
	}
	tbl, err := r.Get("users")
	if err != nil || tbl.Name() != "users" {
		t.Fatalf("get: %v", err)
	}
	if err := r.Drop("users"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get("users"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := r.Drop("users"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("second drop: %v", err)
	}
}

func TestRegistry_EmptyNameRejected(t *testing.T) {
	r := New()
	if _, err := r.Create(""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistry_NameReuseGetsFreshStore(t *testing.T) {
	r := New()
	tbl, _ := r.Create("products")
	tbl.Store().Put([]byte("laptop"), []byte("v"))
	if err := r.Drop("products"); err != nil {
		t.Fatal(err)
	}
	tbl2, err := r.Create("products")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl2.Store().Get([]byte("laptop")); ok {
		t.Fatal("residual key after drop+create")
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	r := New()
	for _, n := range []string{"zebra", "alpha", "mango"} {
		r.Create(n)
	}
	got := r.List()
	want := []string{"alpha", "mango", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
}

func TestRegistry_Rename(t *testing.T) {
	r := New()
	tbl, _ := r.Create("old")
	tbl.Store().Put([]byte("k"), []byte("v"))
	r.Create("taken")

	if err := r.Rename("old", "taken"); !errors.Is(err, ErrTableExists) {
		t.Fatalf("err = %v", err)
	}
	if err := r.Rename("missing", "new"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("err = %v", err)
	}
	if err := r.Rename("old", "new"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Get("new")
	if err != nil || got.Name() != "new" {
		t.Fatalf("get renamed: %v", err)
	}
	if _, ok := got.Store().Get([]byte("k")); !ok {
		t.Fatal("data lost on rename")
	}
	if _, err := r.Get("old"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("old name resolves: %v", err)
	}
}

func TestTable_AcquireAfterDropFails(t *testing.T) {
	r := New()
	tbl, _ := r.Create("t")
	if err := tbl.Acquire(); err != nil {
		t.Fatal(err)
	}

	dropDone := make(chan error, 1)
	go func() { dropDone <- r.Drop("t") }()

	// Drop blocks on the in-flight admission.
	select {
	case <-dropDone:
		t.Fatal("drop returned before in-flight release")
	case <-time.After(20 * time.Millisecond):
	}

	// Once dropping, new admissions fail fast rather than queue.
	deadline := time.After(time.Second)
	for tbl.Acquire() == nil {
		tbl.Release()
		select {
		case <-deadline:
			t.Fatal("acquire kept succeeding during drop")
		default:
		}
	}

	tbl.Release()
	if err := <-dropDone; err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_ConcurrentCreateDrop(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := r.Create("contended"); err == nil {
					r.Drop("contended")
				}
			}
		}()
	}
	wg.Wait()
	// At most one generation may remain.
	if n := r.Len(); n > 1 {
		t.Fatalf("tables left: %d", n)
	}
}
