// Package geom holds the spatial primitives shared by every stage of the
// pipeline.
//
// Dimensionality is fixed at build time: the default build is 2D and the
// dim3 build tag switches [Vector] to three components. Code outside this
// package indexes vectors with 0..Dim-1 and never assumes an arity, so one
// source tree serves both builds and the two can never be mixed in a single
// binary.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when a component slice does not match Dim.
var ErrDimensionMismatch = errors.New("geom: vector arity does not match build dimension")

// Axis indices.
const (
	X = 0
	Y = 1
)

// VectorFromComponents converts host-supplied components into a Vector.
// It never pads or truncates.
func VectorFromComponents(c []float64) (Vector, error) {
	var v Vector
	if len(c) != Dim {
		return v, fmt.Errorf("%w: got %d components, build expects %d", ErrDimensionMismatch, len(c), Dim)
	}
	copy(v[:], c)
	return v, nil
}

// Components returns a copy of v as a slice.
func Components(v Vector) []float64 {
	out := make([]float64, Dim)
	copy(out, v[:])
	return out
}

// Splat returns a vector with every component set to s.
func Splat(s float64) Vector {
	var v Vector
	for i := range v {
		v[i] = s
	}
	return v
}

// Unit returns the basis vector along axis scaled by s.
func Unit(axis int, s float64) Vector {
	var v Vector
	v[axis] = s
	return v
}

func Min(a, b Vector) Vector {
	for i := range a {
		a[i] = math.Min(a[i], b[i])
	}
	return a
}

func Max(a, b Vector) Vector {
	for i := range a {
		a[i] = math.Max(a[i], b[i])
	}
	return a
}

func Abs(v Vector) Vector {
	for i := range v {
		v[i] = math.Abs(v[i])
	}
	return v
}

// Clamp limits each component of v to [lo, hi].
func Clamp(v, lo, hi Vector) Vector {
	return Max(lo, Min(v, hi))
}

// IsFinite reports whether no component is NaN or infinite.
func IsFinite(v Vector) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
