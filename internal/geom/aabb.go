package geom

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vector
}

// NewAABB builds a box from its center and half extents.
func NewAABB(center, halfExtents Vector) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (b AABB) Overlaps(other AABB) bool {
	for i := 0; i < Dim; i++ {
		if b.Min[i] > other.Max[i] || b.Max[i] < other.Min[i] {
			return false
		}
	}
	return true
}

func (b AABB) Contains(p Vector) bool {
	for i := 0; i < Dim; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Expand grows the box by margin on every side.
func (b AABB) Expand(margin float64) AABB {
	m := Splat(margin)
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

func (b AABB) Merge(other AABB) AABB {
	return AABB{Min: Min(b.Min, other.Min), Max: Max(b.Max, other.Max)}
}

func (b AABB) Center() Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) HalfExtents() Vector {
	return b.Max.Sub(b.Min).Mul(0.5)
}
