package export

import (
	"math"
	"sort"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
	"github.com/san-kum/clothsim/internal/viz"
)

// Light is the default light direction, toward the viewer and up.
var Light = dynamo.V3(0.3, 0.8, 0.5).Normalize()

// face is a projected triangle ready to paint.
type face struct {
	px    [3][2]float64
	depth float64
	shade float64 // 0..1
}

// triangles decodes the grid strip. Degeneracy is judged on the rest pose
// so snake turns stay dropped however the cloth deforms.
func triangles(g *topology.Grid) [][3]uint32 {
	return topology.Triangles(g.Indices, g.Positions)
}

func normal(pos []dynamo.Vec3, t [3]uint32) dynamo.Vec3 {
	e1 := pos[t[1]].Sub(pos[t[0]])
	e2 := pos[t[2]].Sub(pos[t[0]])
	return dynamo.V3(e1.Y*e2.Z-e1.Z*e2.Y, e1.Z*e2.X-e1.X*e2.Z, e1.X*e2.Y-e1.Y*e2.X)
}

// project frames pos for the view and returns the faces far to near.
// Faces touching a non-finite point are skipped. Shading is two-sided.
func project(g *topology.Grid, pos []dynamo.Vec3, view viz.View, w, h, margin float64) []face {
	cam := viz.NewCamera(view)
	finite := make([]dynamo.Vec3, 0, len(pos))
	for _, p := range pos {
		if p.IsFinite() {
			finite = append(finite, p)
		}
	}
	vp := viz.Fit(cam, finite, w, h, margin)

	tris := triangles(g)
	faces := make([]face, 0, len(tris))
	for _, t := range tris {
		if int(t[0]) >= len(pos) || int(t[1]) >= len(pos) || int(t[2]) >= len(pos) {
			continue
		}
		if !pos[t[0]].IsFinite() || !pos[t[1]].IsFinite() || !pos[t[2]].IsFinite() {
			continue
		}
		var f face
		for k, idx := range t {
			x, y, d := vp.ToPixel(cam, pos[idx])
			f.px[k] = [2]float64{x, y}
			f.depth += d / 3
		}
		f.shade = 0.25
		if n := normal(pos, t); n.Len2() > 0 {
			f.shade += 0.75 * math.Abs(n.Normalize().Dot(Light))
		}
		faces = append(faces, f)
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].depth < faces[j].depth })
	return faces
}
