package handle

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a slot map addressed by generational handles. Slots are reused
// through a LIFO free list; a slot's generation is bumped when it is freed and
// kept when it is reused. Iteration is always in ascending index order.
//
// Arena is not safe for concurrent use.
type Arena[T any] struct {
	slots    []slot[T]
	freeList []uint32
	len      int
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots:    make([]slot[T], 0, capacity),
		freeList: make([]uint32, 0, capacity/4),
	}
}

// Insert stores value and returns its handle.
func (a *Arena[T]) Insert(value T) Handle {
	a.len++
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		s := &a.slots[idx]
		s.value = value
		s.occupied = true
		return Handle{Index: idx, Generation: s.generation}
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, slot[T]{value: value, occupied: true})
	return Handle{Index: idx, Generation: 0}
}

func (a *Arena[T]) lookup(h Handle) *slot[T] {
	if int64(h.Index) >= int64(len(a.slots)) {
		return nil
	}
	s := &a.slots[h.Index]
	if !s.occupied || s.generation != h.Generation {
		return nil
	}
	return s
}

// Get resolves h. A stale or unknown handle yields (nil, false).
// The pointer is only valid until the next Insert.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	s := a.lookup(h)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

func (a *Arena[T]) Contains(h Handle) bool {
	return a.lookup(h) != nil
}

// Remove frees the slot named by h and returns the value it held.
// Removing a stale handle is a no-op that returns false.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	var zero T
	s := a.lookup(h)
	if s == nil {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.occupied = false
	s.generation++
	a.freeList = append(a.freeList, h.Index)
	a.len--
	return v, true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int { return a.len }

// Each calls fn for every live entry in ascending index order. fn must not
// insert into or remove from the arena.
func (a *Arena[T]) Each(fn func(Handle, *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			fn(Handle{Index: uint32(i), Generation: s.generation}, &s.value)
		}
	}
}

// Handles returns the live handles in ascending index order.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.len)
	for i := range a.slots {
		if a.slots[i].occupied {
			out = append(out, Handle{Index: uint32(i), Generation: a.slots[i].generation})
		}
	}
	return out
}
