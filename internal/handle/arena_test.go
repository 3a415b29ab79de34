package handle

import (
	"math/rand"
	"testing"
)

func TestArenaInsertGet(t *testing.T) {
	a := NewArena[string](4)

	h1 := a.Insert("a")
	h2 := a.Insert("b")

	if h1 == h2 {
		t.Fatalf("expected distinct handles, got %v twice", h1)
	}
	if h1.Generation != 0 || h2.Generation != 0 {
		t.Errorf("fresh slots should start at generation 0, got %v %v", h1, h2)
	}

	v, ok := a.Get(h2)
	if !ok || *v != "b" {
		t.Errorf("Get(%v) = %v, %v", h2, v, ok)
	}
	if a.Len() != 2 {
		t.Errorf("expected len 2, got %d", a.Len())
	}
}

func TestArenaStaleRejection(t *testing.T) {
	a := NewArena[int](4)

	h := a.Insert(1)
	if _, ok := a.Remove(h); !ok {
		t.Fatal("first remove should succeed")
	}
	if _, ok := a.Get(h); ok {
		t.Error("removed handle must not resolve")
	}

	reused := a.Insert(2)
	if reused.Index != h.Index {
		t.Fatalf("expected slot %d to be reused, got %d", h.Index, reused.Index)
	}
	if reused.Generation != h.Generation+1 {
		t.Errorf("expected generation %d, got %d", h.Generation+1, reused.Generation)
	}
	if _, ok := a.Get(h); ok {
		t.Error("stale handle resolved to the new occupant")
	}
	v, ok := a.Get(reused)
	if !ok || *v != 2 {
		t.Errorf("Get(reused) = %v, %v", v, ok)
	}
}

func TestArenaRemoveIdempotent(t *testing.T) {
	a := NewArena[int](4)
	h := a.Insert(7)

	if _, ok := a.Remove(h); !ok {
		t.Fatal("expected first remove to succeed")
	}
	if _, ok := a.Remove(h); ok {
		t.Error("second remove of the same handle should report false")
	}
	if a.Len() != 0 {
		t.Errorf("expected len 0, got %d", a.Len())
	}
	if _, ok := a.Remove(Invalid); ok {
		t.Error("removing the invalid handle should report false")
	}
	if _, ok := a.Get(New(99, 0)); ok {
		t.Error("out of range handle should not resolve")
	}
}

func TestArenaHandleUniqueness(t *testing.T) {
	a := NewArena[int](0)
	rng := rand.New(rand.NewSource(42))
	live := make([]Handle, 0)

	for i := 0; i < 5000; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			j := rng.Intn(len(live))
			if _, ok := a.Remove(live[j]); !ok {
				t.Fatalf("live handle %v failed to remove", live[j])
			}
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		live = append(live, a.Insert(i))
	}

	seen := make(map[Handle]struct{}, len(live))
	for _, h := range live {
		if _, dup := seen[h]; dup {
			t.Fatalf("duplicate live handle %v", h)
		}
		seen[h] = struct{}{}
		if !a.Contains(h) {
			t.Errorf("live handle %v does not resolve", h)
		}
	}
	if a.Len() != len(live) {
		t.Errorf("expected len %d, got %d", len(live), a.Len())
	}
}

func TestArenaEachOrder(t *testing.T) {
	a := NewArena[int](8)
	hs := []Handle{a.Insert(0), a.Insert(1), a.Insert(2), a.Insert(3)}
	a.Remove(hs[1])
	a.Insert(4)

	var got []uint32
	a.Each(func(h Handle, v *int) {
		got = append(got, h.Index)
	})
	want := []uint32{0, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}

	handles := a.Handles()
	if len(handles) != 4 || handles[1].Generation != 1 {
		t.Errorf("unexpected handles %v", handles)
	}
}

func TestHandleRaw(t *testing.T) {
	tests := []Handle{
		New(0, 0),
		New(12, 3),
		New(1<<31, 1<<20),
		Invalid,
	}

	for _, h := range tests {
		if got := FromRaw(h.Raw()); got != h {
			t.Errorf("FromRaw(Raw(%v)) = %v", h, got)
		}
	}

	if New(3, 1).Raw() != 1<<32|3 {
		t.Errorf("unexpected packing: %x", New(3, 1).Raw())
	}
}
