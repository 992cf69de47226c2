package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
)

// WriteOBJ writes the cloth at pos as a Wavefront OBJ mesh with texture
// coordinates and smoothed vertex normals. Indices in the file are 1-based.
func WriteOBJ(w io.Writer, g *topology.Grid, pos []dynamo.Vec3) error {
	if len(pos) != g.Len() {
		return fmt.Errorf("%w: %d positions for a %dx%d grid", dynamo.ErrInvalidState, len(pos), g.Rows, g.Cols)
	}
	tris := triangles(g)

	normals := make([]dynamo.Vec3, len(pos))
	for _, t := range tris {
		n := normal(pos, t)
		if !n.IsFinite() {
			continue
		}
		for _, idx := range t {
			normals[idx] = normals[idx].Add(n)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# cloth %dx%d, %d vertices, %d faces\n", g.Rows, g.Cols, len(pos), len(tris))
	bw.WriteString("o cloth\n")
	for _, p := range pos {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	for _, uv := range g.TexCoords {
		fmt.Fprintf(bw, "vt %.6f %.6f\n", uv[0], 1-uv[1])
	}
	for _, n := range normals {
		if n.Len2() > 0 {
			n = n.Normalize()
		} else {
			n = dynamo.Up
		}
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
	}
	for _, t := range tris {
		a, b, c := t[0]+1, t[1]+1, t[2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	return bw.Flush()
}
