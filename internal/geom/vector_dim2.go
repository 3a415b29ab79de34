//go:build !dim3

package geom

import "github.com/go-gl/mathgl/mgl64"

// Dim is the number of spatial components in this build.
const Dim = 2

// Vector is a 2D vector in the default build. Build with -tags dim3 for 3D.
type Vector = mgl64.Vec2
