package collision

import (
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
)

// Manifold describes how two colliders touch. Normal points from the first
// collider of the pair towards the second; Depth is positive when they
// overlap and negative when they are separated.
type Manifold struct {
	Normal      geom.Vector
	Depth       float64
	Points      []geom.Vector
	Friction    float64
	Restitution float64
}

// computeManifold finds the contact between shape a at pa and shape b at pb.
func computeManifold(a Shape, pa geom.Vector, b Shape, pb geom.Vector) Manifold {
	switch {
	case a.Kind == ShapeBall && b.Kind == ShapeBall:
		return ballBall(a.Radius, pa, b.Radius, pb)
	case a.Kind == ShapeBall && b.Kind == ShapeCuboid:
		return ballCuboid(a.Radius, pa, b.HalfExtents, pb)
	case a.Kind == ShapeCuboid && b.Kind == ShapeBall:
		m := ballCuboid(b.Radius, pb, a.HalfExtents, pa)
		m.Normal = m.Normal.Mul(-1)
		return m
	default:
		return cuboidCuboid(a.HalfExtents, pa, b.HalfExtents, pb)
	}
}

func ballBall(ra float64, pa geom.Vector, rb float64, pb geom.Vector) Manifold {
	delta := pb.Sub(pa)
	dist := delta.Len()

	normal := geom.Unit(geom.Y, 1)
	if dist > 0 {
		normal = delta.Mul(1 / dist)
	}
	depth := ra + rb - dist
	point := pa.Add(normal.Mul(ra - depth*0.5))

	return Manifold{Normal: normal, Depth: depth, Points: []geom.Vector{point}}
}

func ballCuboid(r float64, pa geom.Vector, half geom.Vector, pb geom.Vector) Manifold {
	lo, hi := pb.Sub(half), pb.Add(half)
	closest := geom.Clamp(pa, lo, hi)
	delta := pa.Sub(closest)
	dist := delta.Len()

	if dist > 0 {
		return Manifold{
			Normal: delta.Mul(-1 / dist),
			Depth:  r - dist,
			Points: []geom.Vector{closest},
		}
	}

	// Ball center inside the cuboid: push out through the nearest face.
	axis, sign, best := 0, 1.0, math.Inf(1)
	for i := 0; i < geom.Dim; i++ {
		if d := pa[i] - lo[i]; d < best {
			axis, sign, best = i, -1, d
		}
		if d := hi[i] - pa[i]; d < best {
			axis, sign, best = i, 1, d
		}
	}
	return Manifold{
		Normal: geom.Unit(axis, -sign),
		Depth:  best + r,
		Points: []geom.Vector{pa},
	}
}

func cuboidCuboid(ha geom.Vector, pa geom.Vector, hb geom.Vector, pb geom.Vector) Manifold {
	a := geom.NewAABB(pa, ha)
	b := geom.NewAABB(pb, hb)

	axis, depth := 0, math.Inf(1)
	var overlapMin, overlapMax geom.Vector
	for i := 0; i < geom.Dim; i++ {
		overlapMin[i] = math.Max(a.Min[i], b.Min[i])
		overlapMax[i] = math.Min(a.Max[i], b.Max[i])
		if o := overlapMax[i] - overlapMin[i]; o < depth {
			axis, depth = i, o
		}
	}

	sign := 1.0
	if pb[axis] < pa[axis] {
		sign = -1
	}
	point := overlapMin.Add(overlapMax).Mul(0.5)

	return Manifold{Normal: geom.Unit(axis, sign), Depth: depth, Points: []geom.Vector{point}}
}

func combineFriction(a, b float64) float64 { return math.Sqrt(a * b) }

func combineRestitution(a, b float64) float64 { return math.Min(a, b) }
