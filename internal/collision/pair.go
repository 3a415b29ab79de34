package collision

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/handle"
)

// ColliderPair is an unordered pair stored with A.Less(B).
type ColliderPair struct {
	A, B handle.Handle
}

func NewColliderPair(a, b handle.Handle) ColliderPair {
	if b.Less(a) {
		a, b = b, a
	}
	return ColliderPair{A: a, B: b}
}

func (p ColliderPair) Contains(h handle.Handle) bool { return p.A == h || p.B == h }

// Other returns the member of p that is not h.
func (p ColliderPair) Other(h handle.Handle) handle.Handle {
	if p.A == h {
		return p.B
	}
	return p.A
}

func comparePairs(x, y ColliderPair) int {
	if x.A != y.A {
		if x.A.Less(y.A) {
			return -1
		}
		return 1
	}
	if x.B == y.B {
		return 0
	}
	if x.B.Less(y.B) {
		return -1
	}
	return 1
}

func sortPairs(pairs []ColliderPair) {
	slices.SortFunc(pairs, comparePairs)
}
