package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// View is a named camera orientation.
type View int

const (
	ViewFront View = iota
	ViewSide
	ViewTop
	ViewIso
)

var viewNames = [...]string{"front", "side", "top", "iso"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("view(%d)", int(v))
	}
	return viewNames[v]
}

// Next cycles front, side, top, iso.
func (v View) Next() View { return (v + 1) % View(len(viewNames)) }

func ParseView(s string) (View, error) {
	for i, n := range viewNames {
		if n == s {
			return View(i), nil
		}
	}
	if s == "" {
		return ViewFront, nil
	}
	return 0, fmt.Errorf("%w: view %q", dynamo.ErrUnknownName, s)
}

// Camera is an orthographic camera orbiting the world origin. Yaw turns
// about Y, then pitch tilts about the camera X axis. A point's depth grows
// toward the viewer.
type Camera struct {
	Yaw, Pitch float64
	Zoom       float64
}

func NewCamera(v View) *Camera {
	c := &Camera{Zoom: 1}
	c.SetView(v)
	return c
}

func (c *Camera) SetView(v View) {
	switch v {
	case ViewSide:
		c.Yaw, c.Pitch = math.Pi/2, 0
	case ViewTop:
		c.Yaw, c.Pitch = 0, math.Pi/2
	case ViewIso:
		c.Yaw, c.Pitch = math.Pi/4, math.Atan(1/math.Sqrt2)
	default:
		c.Yaw, c.Pitch = 0, 0
	}
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = math.Max(-math.Pi/2, math.Min(math.Pi/2, c.Pitch+a)) }
func (c *Camera) ZoomIn()               { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()              { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Project returns screen-plane coordinates (y up) and depth.
func (c *Camera) Project(p dynamo.Vec3) (x, y, depth float64) {
	cy, sy := math.Cos(c.Yaw), math.Sin(c.Yaw)
	x = p.X*cy - p.Z*sy
	z := p.X*sy + p.Z*cy
	cp, sp := math.Cos(c.Pitch), math.Sin(c.Pitch)
	y = p.Y*cp - z*sp
	depth = p.Y*sp + z*cp
	return x * c.Zoom, y * c.Zoom, depth
}

// Viewport maps the screen plane onto a pixel rectangle with y pointing down.
type Viewport struct {
	Width, Height float64
	CenterX       float64
	CenterY       float64
	Scale         float64
}

// Fit frames pts inside a w x h pixel rectangle, keeping margin pixels free
// on every side and preserving aspect ratio.
func Fit(c *Camera, pts []dynamo.Vec3, w, h, margin float64) Viewport {
	vp := Viewport{Width: w, Height: h, Scale: 1}
	if len(pts) == 0 {
		return vp
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x, y, _ := c.Project(p)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if math.IsInf(minX, 1) {
		return vp
	}
	vp.CenterX = (minX + maxX) / 2
	vp.CenterY = (minY + maxY) / 2
	spanX, spanY := maxX-minX, maxY-minY
	availX, availY := w-2*margin, h-2*margin
	if availX <= 0 || availY <= 0 {
		availX, availY = w, h
	}
	switch {
	case spanX <= dynamo.Epsilon && spanY <= dynamo.Epsilon:
		vp.Scale = 1
	case spanX*availY > spanY*availX:
		vp.Scale = availX / spanX
	default:
		vp.Scale = availY / spanY
	}
	return vp
}

// Pixel converts screen-plane coordinates to pixels.
func (vp Viewport) Pixel(x, y float64) (float64, float64) {
	return vp.Width/2 + (x-vp.CenterX)*vp.Scale, vp.Height/2 - (y-vp.CenterY)*vp.Scale
}

// ToPixel projects a world point straight to pixels.
func (vp Viewport) ToPixel(c *Camera, p dynamo.Vec3) (px, py, depth float64) {
	x, y, d := c.Project(p)
	px, py = vp.Pixel(x, y)
	return px, py, d
}
