package analysis

import (
	"math"
	"strings"
)

type Point struct {
	X, Y float64
}

// Zip pairs two series into points, stopping at the shorter one.
func Zip(xs, ys []float64) []Point {
	n := min(len(xs), len(ys))
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{xs[i], ys[i]}
	}
	return points
}

// Bounds returns the extent of points grown by 10% on each side. A
// degenerate axis is given a unit range.
func Bounds(points []Point) (Point, Point) {
	if len(points) == 0 {
		return Point{}, Point{1, 1}
	}
	lo, hi := points[0], points[0]
	for _, p := range points {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	pad := func(lo, hi float64) (float64, float64) {
		r := hi - lo
		if r == 0 {
			r = 1
		}
		return lo - r*0.1, hi + r*0.1
	}
	lo.X, hi.X = pad(lo.X, hi.X)
	lo.Y, hi.Y = pad(lo.Y, hi.Y)
	return lo, hi
}

// PhasePortrait pairs each sample with its central-difference velocity.
// The end points use one-sided differences.
func PhasePortrait(values, times []float64) []Point {
	n := min(len(values), len(times))
	if n < 2 {
		return nil
	}
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		a, b := max(i-1, 0), min(i+1, n-1)
		v := 0.0
		if dt := times[b] - times[a]; dt > 0 {
			v = (values[b] - values[a]) / dt
		}
		points[i] = Point{values[i], v}
	}
	return points
}

// Crossings returns the interpolated times at which values rises through
// threshold.
func Crossings(values, times []float64, threshold float64) []float64 {
	var out []float64
	n := min(len(values), len(times))
	for i := 1; i < n; i++ {
		prev, cur := values[i-1], values[i]
		if prev < threshold && cur >= threshold {
			frac := (threshold - prev) / (cur - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of upward crossings of the series mean.
func Period(values, times []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	c := Crossings(values, times, mean)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), true
}

// PathASCII plots points on a width by height character grid, with axes
// where they cross the visible area.
func PathASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}
	lo, hi := Bounds(points)
	col := func(x float64) int { return int((x - lo.X) / (hi.X - lo.X) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-lo.Y)/(hi.Y-lo.Y)*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	if lo.X <= 0 && hi.X >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}
	for _, p := range points {
		grid[row(p.Y)][col(p.X)] = '•'
	}

	var sb strings.Builder
	for _, r := range grid {
		sb.WriteString(string(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
