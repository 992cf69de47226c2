package analysis

import (
	"math"
	"strings"
)

type Point2 struct{ X, Y float64 }

// PhasePortrait pairs a point's coordinate with its velocity over a run.
type PhasePortrait struct {
	Axis   Axis
	Points []Point2
}

// NewPhasePortrait builds the portrait of a trace. Traces without
// velocities yield an empty portrait.
func NewPhasePortrait(tr Trace, axis Axis) *PhasePortrait {
	p := &PhasePortrait{Axis: axis}
	if tr.Velocity == nil {
		return p
	}
	p.Points = make([]Point2, len(tr.Position))
	for i := range tr.Position {
		p.Points[i] = Point2{tr.Position[i], tr.Velocity[i]}
	}
	return p
}

// PoincareSection records every upward crossing of level as (crossing
// time, velocity at the crossing), interpolated between samples.
func PoincareSection(tr Trace, level float64) []Point2 {
	var out []Point2
	for i := 1; i < len(tr.Position); i++ {
		a, b := tr.Position[i-1], tr.Position[i]
		if !(a < level && b >= level) {
			continue
		}
		frac := (level - a) / (b - a)
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		var v float64
		if tr.Velocity != nil {
			v = tr.Velocity[i-1] + frac*(tr.Velocity[i]-tr.Velocity[i-1])
		}
		out = append(out, Point2{X: tr.Times[i-1] + frac*(tr.Times[i]-tr.Times[i-1]), Y: v})
	}
	return out
}

// PlotASCII scatters points on a width x height character grid padded by
// 10% of each range, drawing the axes where they are in view.
func PlotASCII(points []Point2, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX, rangeY = maxX-minX, maxY-minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	for _, p := range points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}
	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
