package viz

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
)

// Scene is what a frame of the cloth view contains besides the mesh itself.
type Scene struct {
	Grid    *topology.Grid
	Spheres []cloth.Sphere
	Ground  bool
}

// NewScene collects the grid and the drawable colliders of a body.
func NewScene(b *cloth.Body) Scene {
	s := Scene{Grid: b.Grid(), Ground: true}
	for _, c := range b.Params().Colliders {
		if sp, ok := c.(cloth.Sphere); ok {
			s.Spheres = append(s.Spheres, sp)
		}
	}
	return s
}

// Extent lists points that should stay in frame: the cloth, its shadow on
// the ground and the bounding boxes of the spheres.
func (s Scene) Extent(pos []dynamo.Vec3) []dynamo.Vec3 {
	pts := make([]dynamo.Vec3, 0, len(pos)*2+8*len(s.Spheres))
	for _, p := range pos {
		if !p.IsFinite() {
			continue
		}
		pts = append(pts, p)
		if s.Ground {
			pts = append(pts, dynamo.V3(p.X, 0, p.Z))
		}
	}
	for _, sp := range s.Spheres {
		r := sp.Radius
		for _, d := range [][3]float64{{1, 1, 1}, {-1, -1, -1}, {1, -1, 1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, 1}, {1, -1, -1}, {-1, 1, 1}} {
			pts = append(pts, sp.Center.Add(dynamo.V3(d[0]*r, d[1]*r, d[2]*r)))
		}
	}
	return pts
}

// Draw renders structural links, sphere outlines and the ground footprint.
func (s Scene) Draw(c *Canvas, cam *Camera, vp Viewport, pos []dynamo.Vec3) {
	if s.Ground && len(pos) > 0 && s.Grid != nil {
		s.drawGround(c, cam, vp)
	}
	for _, sp := range s.Spheres {
		x, y, _ := vp.ToPixel(cam, sp.Center)
		c.DrawCircle(x, y, sp.Radius*cam.Zoom*vp.Scale)
	}
	DrawMesh(c, cam, vp, s.Grid, pos)
}

func (s Scene) drawGround(c *Canvas, cam *Camera, vp Viewport) {
	g := s.Grid
	corners := []dynamo.Vec3{
		g.Positions[g.Index(0, 0)],
		g.Positions[g.Index(0, g.Cols-1)],
		g.Positions[g.Index(g.Rows-1, g.Cols-1)],
		g.Positions[g.Index(g.Rows-1, 0)],
	}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		a.Y, b.Y = 0, 0
		x0, y0, _ := vp.ToPixel(cam, a)
		x1, y1, _ := vp.ToPixel(cam, b)
		c.DrawLineF(x0, y0, x1, y1)
	}
}

// DrawMesh draws every structural link of g at the given positions.
func DrawMesh(c *Canvas, cam *Camera, vp Viewport, g *topology.Grid, pos []dynamo.Vec3) {
	if g == nil {
		return
	}
	for _, l := range g.Links {
		if l.Kind != topology.Structural || l.A >= len(pos) || l.B >= len(pos) {
			continue
		}
		x0, y0, _ := vp.ToPixel(cam, pos[l.A])
		x1, y1, _ := vp.ToPixel(cam, pos[l.B])
		c.DrawLineF(x0, y0, x1, y1)
	}
}
