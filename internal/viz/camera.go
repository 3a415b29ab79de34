package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidsim/internal/geom"
)

const (
	minScale = 0.5
	maxScale = 200
)

// Camera maps world positions to canvas dots with an orthographic projection.
// In 3D builds the scene is turned by Yaw about the vertical axis and then
// tilted by Pitch before the depth axis is dropped.
type Camera struct {
	Focus      mgl64.Vec2
	Scale      float64 // dots per world unit
	Yaw, Pitch float64
}

func NewCamera(scale float64) *Camera {
	c := &Camera{Scale: scale}
	if geom.Dim == 3 {
		c.Yaw, c.Pitch = math.Pi/6, math.Pi/10
	}
	return c
}

func (c *Camera) ZoomIn()  { c.Scale = math.Min(maxScale, c.Scale*1.25) }
func (c *Camera) ZoomOut() { c.Scale = math.Max(minScale, c.Scale/1.25) }

// Pan moves the focus by a number of dots.
func (c *Camera) Pan(dx, dy float64) {
	c.Focus = c.Focus.Add(mgl64.Vec2{dx, dy}.Mul(1 / c.Scale))
}

// Rotate turns the view. It has no effect in 2D builds.
func (c *Camera) Rotate(yaw, pitch float64) {
	if geom.Dim < 3 {
		return
	}
	c.Yaw += yaw
	c.Pitch = mgl64.Clamp(c.Pitch+pitch, -math.Pi/2, math.Pi/2)
}

// view lifts p into 3D and applies the camera rotation.
func (c *Camera) view(p geom.Vector) mgl64.Vec2 {
	var v mgl64.Vec3
	for i := 0; i < geom.Dim; i++ {
		v[i] = p[i]
	}
	if geom.Dim == 3 {
		v = mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw)).Mul3x1(v)
	}
	return v.Vec2()
}

// Project returns the dot coordinates of p on a canvas of w by h dots.
func (c *Camera) Project(p geom.Vector, w, h int) (int, int) {
	v := c.view(p).Sub(c.Focus).Mul(c.Scale)
	return w/2 + int(math.Round(v.X())), h/2 - int(math.Round(v.Y()))
}

// Length converts a world distance to dots.
func (c *Camera) Length(d float64) int {
	return int(math.Round(d * c.Scale))
}

// Fit centers the camera on bounds and picks the largest scale that shows
// them on a canvas of w by h dots.
func (c *Camera) Fit(bounds geom.AABB, w, h int) {
	lo, hi := c.view(bounds.Min), c.view(bounds.Max)
	if geom.Dim == 3 {
		// rotated corners do not stay extreme
		for i := 0; i < 8; i++ {
			var corner geom.Vector
			for a := 0; a < geom.Dim; a++ {
				corner[a] = bounds.Min[a]
				if i&(1<<a) != 0 {
					corner[a] = bounds.Max[a]
				}
			}
			v := c.view(corner)
			lo = mgl64.Vec2{math.Min(lo.X(), v.X()), math.Min(lo.Y(), v.Y())}
			hi = mgl64.Vec2{math.Max(hi.X(), v.X()), math.Max(hi.Y(), v.Y())}
		}
	}
	c.Focus = lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	scale := float64(maxScale)
	if size.X() > 0 {
		scale = math.Min(scale, float64(w-2)/size.X())
	}
	if size.Y() > 0 {
		scale = math.Min(scale, float64(h-2)/size.Y())
	}
	c.Scale = math.Max(minScale, scale)
}
