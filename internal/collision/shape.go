package collision

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/geom"
)

type ShapeKind int

const (
	ShapeBall ShapeKind = iota
	ShapeCuboid
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBall:
		return "ball"
	case ShapeCuboid:
		return "cuboid"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is a ball or an axis-aligned cuboid.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents geom.Vector
}

func Ball(radius float64) Shape {
	return Shape{Kind: ShapeBall, Radius: radius}
}

func Cuboid(halfExtents geom.Vector) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: halfExtents}
}

// AABB returns the bounds of the shape centered at center.
func (s Shape) AABB(center geom.Vector) geom.AABB {
	if s.Kind == ShapeBall {
		return geom.NewAABB(center, geom.Splat(s.Radius))
	}
	return geom.NewAABB(center, s.HalfExtents)
}

// Volume is the area of the shape in 2D builds and its volume in 3D builds.
func (s Shape) Volume() float64 {
	if s.Kind == ShapeBall {
		if geom.Dim == 2 {
			return math.Pi * s.Radius * s.Radius
		}
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	}
	v := 1.0
	for i := 0; i < geom.Dim; i++ {
		v *= 2 * s.HalfExtents[i]
	}
	return v
}

func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeBall:
		if s.Radius <= 0 {
			return fmt.Errorf("%w: ball radius must be positive, got %f", ErrInvalidShape, s.Radius)
		}
	case ShapeCuboid:
		for i := 0; i < geom.Dim; i++ {
			if s.HalfExtents[i] <= 0 {
				return fmt.Errorf("%w: cuboid half extents must be positive, got %v", ErrInvalidShape, s.HalfExtents)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidShape, s.Kind)
	}
	return nil
}
