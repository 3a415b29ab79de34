//go:build dim3

package geom

import "github.com/go-gl/mathgl/mgl64"

// Dim is the number of spatial components in this build.
const Dim = 3

// Vector is a 3D vector when built with -tags dim3.
type Vector = mgl64.Vec3
