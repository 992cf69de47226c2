package topology

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// RestartIndex separates rows of a LayoutRestart strip.
const RestartIndex uint32 = 0xFFFFFFFF

type Layout int

const (
	// LayoutRestart emits one strip per row pair separated by RestartIndex.
	LayoutRestart Layout = iota
	// LayoutSnake walks rows back and forth as a single strip with no sentinel.
	// The triangle at each row turn has zero area only on the rest grid; drawn
	// over deformed positions it shows as a thin sliver along the edge.
	// Triangles drops it when given rest positions.
	LayoutSnake
)

func (l Layout) String() string {
	switch l {
	case LayoutRestart:
		return "restart"
	case LayoutSnake:
		return "snake"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

func ParseLayout(s string) (Layout, error) {
	switch s {
	case "", "restart":
		return LayoutRestart, nil
	case "snake", "boustrophedon":
		return LayoutSnake, nil
	}
	return 0, fmt.Errorf("%w: layout %q", dynamo.ErrUnknownName, s)
}

// StripIndices builds the triangle-strip index sequence for a rows x cols grid.
func StripIndices(rows, cols int, layout Layout) ([]uint32, error) {
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("%w: grid %dx%d", dynamo.ErrInvalidTopology, rows, cols)
	}
	switch layout {
	case LayoutRestart:
		return restartStrip(rows, cols), nil
	case LayoutSnake:
		return snakeStrip(rows, cols), nil
	}
	return nil, fmt.Errorf("%w: layout %d", dynamo.ErrUnknownName, int(layout))
}

func restartStrip(rows, cols int) []uint32 {
	out := make([]uint32, 0, (rows-1)*(2*cols+1)-1)
	for i := 0; i < rows-1; i++ {
		if i > 0 {
			out = append(out, RestartIndex)
		}
		for j := 0; j < cols; j++ {
			top := uint32(i*cols + j)
			out = append(out, top, top+uint32(cols))
		}
	}
	return out
}

// snakeStrip zig-zags right along even row pairs and left along odd ones.
// The turn at each row end produces one zero-area triangle.
func snakeStrip(rows, cols int) []uint32 {
	out := make([]uint32, 0, (2*(cols-1)+1)*(rows-1)+1)
	idx := 0
	dir := 1
	out = append(out, uint32(idx))
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			out = append(out, uint32(idx+cols))
			idx += dir
			out = append(out, uint32(idx))
		}
		idx += cols
		out = append(out, uint32(idx))
		dir = -dir
	}
	return out
}

// Triangles decodes a strip into a triangle list, dropping triangles that
// span a restart sentinel or repeat a vertex. Collinear triangles produced by
// the snake turn are dropped when positions is non-nil.
func Triangles(indices []uint32, positions []dynamo.Vec3) [][3]uint32 {
	tris := make([][3]uint32, 0, len(indices))
	parity := 0
	for k := 2; k < len(indices); k++ {
		a, b, c := indices[k-2], indices[k-1], indices[k]
		if a == RestartIndex || b == RestartIndex || c == RestartIndex {
			parity = 0
			continue
		}
		tri := [3]uint32{a, b, c}
		if parity%2 == 1 {
			tri = [3]uint32{b, a, c}
		}
		parity++
		if a == b || b == c || a == c {
			continue
		}
		if positions != nil && degenerate(positions, tri) {
			continue
		}
		tris = append(tris, tri)
	}
	return tris
}

func degenerate(pos []dynamo.Vec3, t [3]uint32) bool {
	if int(t[0]) >= len(pos) || int(t[1]) >= len(pos) || int(t[2]) >= len(pos) {
		return true
	}
	e1 := pos[t[1]].Sub(pos[t[0]])
	e2 := pos[t[2]].Sub(pos[t[0]])
	cross := dynamo.V3(e1.Y*e2.Z-e1.Z*e2.Y, e1.Z*e2.X-e1.X*e2.Z, e1.X*e2.Y-e1.Y*e2.X)
	return cross.Len2() <= 1e-12*e1.Len2()*e2.Len2()
}
