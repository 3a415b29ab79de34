// Package export renders stored runs as standalone SVG documents.
//
// Scenes are drawn in the XY plane; a 3D snapshot is viewed from the front.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/world"
)

const (
	background = "#0a0a0a"
	bodyFill   = "#1f6f3f"
	bodyStroke = "#00ff00"
	sensorLine = "#808080"
	jointLine  = "#ffaa00"
	contactDot = "#ff3355"
)

var pathColors = []string{"#00ccff", "#ff66cc", "#ffee55", "#99ff66"}

// viewport maps world coordinates onto an SVG canvas with Y pointing up.
type viewport struct {
	lo, hi        analysis.Point
	width, height int
}

func newViewport(points []analysis.Point, width, height int) viewport {
	lo, hi := analysis.Bounds(points)
	// Equal scale on both axes.
	sx := (hi.X - lo.X) / float64(width)
	sy := (hi.Y - lo.Y) / float64(height)
	if sx > sy {
		mid := (lo.Y + hi.Y) / 2
		half := sx * float64(height) / 2
		lo.Y, hi.Y = mid-half, mid+half
	} else {
		mid := (lo.X + hi.X) / 2
		half := sy * float64(width) / 2
		lo.X, hi.X = mid-half, mid+half
	}
	return viewport{lo: lo, hi: hi, width: width, height: height}
}

func (v viewport) x(x float64) float64 {
	return (x - v.lo.X) / (v.hi.X - v.lo.X) * float64(v.width)
}

func (v viewport) y(y float64) float64 {
	return float64(v.height) - (y-v.lo.Y)/(v.hi.Y-v.lo.Y)*float64(v.height)
}

func (v viewport) length(d float64) float64 {
	return d / (v.hi.X - v.lo.X) * float64(v.width)
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func polyline(sb *strings.Builder, v viewport, points []analysis.Point, stroke string) {
	if len(points) < 2 {
		return
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i, p := range points {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(sb, "%.1f,%.1f", v.x(p.X), v.y(p.Y))
	}
	sb.WriteString("\"/>\n")
}

func xy(c []float64) analysis.Point {
	if len(c) < 2 {
		return analysis.Point{}
	}
	return analysis.Point{X: c[0], Y: c[1]}
}

type placed struct {
	world.ColliderState
	center analysis.Point
}

// place resolves each collider's world center from its parent body.
func place(s world.Snapshot, bodies map[uint64]analysis.Point) []placed {
	out := make([]placed, 0, len(s.Colliders))
	for _, c := range s.Colliders {
		center := xy(c.Offset)
		if p, ok := bodies[c.Parent]; ok {
			center.X += p.X
			center.Y += p.Y
		}
		out = append(out, placed{ColliderState: c, center: center})
	}
	return out
}

// Scene draws the colliders, joints and contacts of a snapshot together with
// any number of body paths.
func Scene(s world.Snapshot, paths [][]analysis.Point, width, height int) string {
	bodies := make(map[uint64]analysis.Point, len(s.Bodies))
	for _, b := range s.Bodies {
		bodies[b.Handle] = xy(b.Position)
	}
	colliders := place(s, bodies)

	var extent []analysis.Point
	for _, c := range colliders {
		r := c.Radius
		if c.Shape != "ball" {
			he := xy(c.HalfExtents)
			r = math.Max(he.X, he.Y)
		}
		extent = append(extent,
			analysis.Point{X: c.center.X - r, Y: c.center.Y - r},
			analysis.Point{X: c.center.X + r, Y: c.center.Y + r})
	}
	for _, p := range paths {
		extent = append(extent, p...)
	}
	v := newViewport(extent, width, height)

	var sb strings.Builder
	header(&sb, width, height)

	for i, p := range paths {
		polyline(&sb, v, p, pathColors[i%len(pathColors)])
	}

	centers := make(map[uint64]analysis.Point, len(colliders))
	for _, c := range colliders {
		centers[c.Handle] = c.center
		fill, stroke := bodyFill, bodyStroke
		if c.Sensor {
			fill, stroke = "none", sensorLine
		}
		if c.Shape == "ball" {
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s"/>`+"\n",
				v.x(c.center.X), v.y(c.center.Y), v.length(c.Radius), fill, stroke)
			continue
		}
		he := xy(c.HalfExtents)
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="%s"/>`+"\n",
			v.x(c.center.X-he.X), v.y(c.center.Y+he.Y), v.length(2*he.X), v.length(2*he.Y), fill, stroke)
	}

	for _, j := range s.Joints {
		a, okA := bodies[j.Body1]
		b, okB := bodies[j.Body2]
		if !okA || !okB {
			continue
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 2"/>`+"\n",
			v.x(a.X), v.y(a.Y), v.x(b.X), v.y(b.Y), jointLine)
	}

	for _, c := range s.Contacts {
		a, okA := centers[c.A]
		b, okB := centers[c.B]
		if !okA || !okB {
			continue
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>`+"\n",
			v.x((a.X+b.X)/2), v.y((a.Y+b.Y)/2), contactDot)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Path draws a single polyline scaled to fill the canvas.
func Path(points []analysis.Point, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}
	lo, hi := analysis.Bounds(points)
	v := viewport{lo: lo, hi: hi, width: width, height: height}

	var sb strings.Builder
	header(&sb, width, height)
	polyline(&sb, v, points, stroke)
	sb.WriteString("</svg>\n")
	return sb.String()
}
