package collision

import (
	"math"
	"slices"

	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

const (
	// DefaultCellSize is the grid spacing used when none is configured.
	DefaultCellSize = 2.0

	// Proxies spanning more cells than this are tested against every other
	// proxy instead of being written into the grid.
	maxProxyCells = 1024

	maxCellCoord = 1 << 30
)

type cellKey [geom.Dim]int32

type cellRange struct {
	lo, hi cellKey
}

func (r cellRange) count() int64 {
	n := int64(1)
	for i := 0; i < geom.Dim; i++ {
		n *= int64(r.hi[i]) - int64(r.lo[i]) + 1
		if n > maxProxyCells {
			return n
		}
	}
	return n
}

func (r cellRange) each(fn func(cellKey)) {
	k := r.lo
	for {
		fn(k)
		i := 0
		for ; i < geom.Dim; i++ {
			if k[i] < r.hi[i] {
				k[i]++
				break
			}
			k[i] = r.lo[i]
		}
		if i == geom.Dim {
			return
		}
	}
}

type proxy struct {
	aabb      geom.AABB
	cells     cellRange
	oversized bool
	parent    handle.Handle
	dynamic   bool
}

// BroadPhase indexes collider bounds in a uniform grid.
type BroadPhase struct {
	cellSize  float64
	proxies   map[handle.Handle]*proxy
	cells     map[cellKey][]handle.Handle
	oversized map[handle.Handle]struct{}
	pairs     []ColliderPair
}

// NewBroadPhase creates an empty index. A non-positive cellSize selects
// DefaultCellSize.
func NewBroadPhase(cellSize float64) *BroadPhase {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = DefaultCellSize
	}
	return &BroadPhase{
		cellSize:  cellSize,
		proxies:   make(map[handle.Handle]*proxy),
		cells:     make(map[cellKey][]handle.Handle),
		oversized: make(map[handle.Handle]struct{}),
	}
}

func (bp *BroadPhase) CellSize() float64 { return bp.cellSize }

// UpdateCandidates re-indexes every collider from its current bounds, drops
// proxies of colliders that no longer exist and recomputes the candidate set.
// Bounds are inflated by margin.
func (bp *BroadPhase) UpdateCandidates(bodies *dynamics.BodySet, colliders *ColliderSet, margin float64) {
	for h := range bp.proxies {
		if !colliders.Contains(h) {
			bp.unlink(h)
		}
	}

	colliders.Each(func(h handle.Handle, c *Collider) {
		body, ok := bodies.GetMut(c.Parent)
		if !ok {
			bp.unlink(h)
			return
		}
		box := c.Shape.AABB(c.Position(body.Position)).Expand(margin)
		bp.setProxy(h, box, c.Parent, body.IsDynamic())
	})

	bp.rebuildPairs()
}

// Candidates returns the current candidate pairs in sorted order.
func (bp *BroadPhase) Candidates() []ColliderPair {
	return slices.Clone(bp.pairs)
}

// RemoveEntriesFor drops the proxy of h and every candidate pair involving it.
// It reports whether anything was removed.
func (bp *BroadPhase) RemoveEntriesFor(h handle.Handle) bool {
	removed := bp.unlink(h)
	n := len(bp.pairs)
	bp.pairs = slices.DeleteFunc(bp.pairs, func(p ColliderPair) bool { return p.Contains(h) })
	return removed || len(bp.pairs) != n
}

// Entries returns the indexed collider handles in sorted order.
func (bp *BroadPhase) Entries() []handle.Handle {
	out := make([]handle.Handle, 0, len(bp.proxies))
	for h := range bp.proxies {
		out = append(out, h)
	}
	slices.SortFunc(out, compareHandles)
	return out
}

func (bp *BroadPhase) Len() int { return len(bp.proxies) }

// Bounds returns the last indexed bounds of h.
func (bp *BroadPhase) Bounds(h handle.Handle) (geom.AABB, bool) {
	p, ok := bp.proxies[h]
	if !ok {
		return geom.AABB{}, false
	}
	return p.aabb, true
}

func (bp *BroadPhase) cellCoord(x float64) int32 {
	c := math.Floor(x / bp.cellSize)
	switch {
	case math.IsNaN(c):
		return 0
	case c > maxCellCoord:
		return maxCellCoord
	case c < -maxCellCoord:
		return -maxCellCoord
	}
	return int32(c)
}

func (bp *BroadPhase) rangeFor(b geom.AABB) cellRange {
	var r cellRange
	for i := 0; i < geom.Dim; i++ {
		r.lo[i] = bp.cellCoord(b.Min[i])
		r.hi[i] = bp.cellCoord(b.Max[i])
	}
	return r
}

func (bp *BroadPhase) setProxy(h handle.Handle, box geom.AABB, parent handle.Handle, dynamic bool) {
	r := bp.rangeFor(box)
	over := r.count() > maxProxyCells

	p, ok := bp.proxies[h]
	if ok && p.cells == r && p.oversized == over {
		p.aabb, p.parent, p.dynamic = box, parent, dynamic
		return
	}
	if ok {
		bp.unlink(h)
	}

	p = &proxy{aabb: box, cells: r, oversized: over, parent: parent, dynamic: dynamic}
	bp.proxies[h] = p
	if over {
		bp.oversized[h] = struct{}{}
		return
	}
	r.each(func(k cellKey) {
		bp.cells[k] = append(bp.cells[k], h)
	})
}

func (bp *BroadPhase) unlink(h handle.Handle) bool {
	p, ok := bp.proxies[h]
	if !ok {
		return false
	}
	delete(bp.proxies, h)
	if p.oversized {
		delete(bp.oversized, h)
		return true
	}
	p.cells.each(func(k cellKey) {
		list := slices.DeleteFunc(bp.cells[k], func(o handle.Handle) bool { return o == h })
		if len(list) == 0 {
			delete(bp.cells, k)
			return
		}
		bp.cells[k] = list
	})
	return true
}

func (bp *BroadPhase) rebuildPairs() {
	bp.pairs = bp.pairs[:0]
	seen := make(map[ColliderPair]struct{})

	consider := func(a, b handle.Handle) {
		if a == b {
			return
		}
		pair := NewColliderPair(a, b)
		if _, dup := seen[pair]; dup {
			return
		}
		seen[pair] = struct{}{}

		pa, pb := bp.proxies[a], bp.proxies[b]
		if pa.parent == pb.parent || (!pa.dynamic && !pb.dynamic) {
			return
		}
		if pa.aabb.Overlaps(pb.aabb) {
			bp.pairs = append(bp.pairs, pair)
		}
	}

	for _, list := range bp.cells {
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				consider(list[i], list[j])
			}
		}
	}
	for h := range bp.oversized {
		for other := range bp.proxies {
			consider(h, other)
		}
	}

	sortPairs(bp.pairs)
}

func compareHandles(a, b handle.Handle) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}
