package topology

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	DefaultRows    = 21
	DefaultCols    = 31
	DefaultSpacing = 1.0 / 3.0
	DefaultHeight  = 10.0
)

type Options struct {
	Rows    int
	Cols    int
	Spacing float64 // rest distance between orthogonal neighbours
	Height  float64 // y of the rest plane
	Layout  Layout
	Shear   bool // add diagonal springs
	Bend    bool // add springs two cells apart
}

func DefaultOptions() Options {
	return Options{
		Rows:    DefaultRows,
		Cols:    DefaultCols,
		Spacing: DefaultSpacing,
		Height:  DefaultHeight,
		Layout:  LayoutRestart,
		Shear:   true,
		Bend:    true,
	}
}

type Grid struct {
	Rows, Cols int
	Spacing    float64
	Layout     Layout

	Positions []dynamo.Vec3
	TexCoords [][2]float32
	Indices   []uint32
	Links     []Link
}

// Generate lays out Rows*Cols points centred on the Y axis, builds the strip
// indices for the requested layout and the spring links.
func Generate(opts Options) (*Grid, error) {
	if opts.Rows < 2 || opts.Cols < 2 {
		return nil, fmt.Errorf("%w: grid %dx%d, need at least 2x2", dynamo.ErrInvalidTopology, opts.Rows, opts.Cols)
	}
	if !(opts.Spacing > 0) {
		return nil, fmt.Errorf("%w: spacing must be positive, got %g", dynamo.ErrInvalidTopology, opts.Spacing)
	}

	g := &Grid{
		Rows:    opts.Rows,
		Cols:    opts.Cols,
		Spacing: opts.Spacing,
		Layout:  opts.Layout,
	}

	n := opts.Rows * opts.Cols
	g.Positions = make([]dynamo.Vec3, 0, n)
	g.TexCoords = make([][2]float32, 0, n)

	x0 := -float64(opts.Cols-1) * opts.Spacing / 2
	z0 := float64(opts.Rows-1) * opts.Spacing / 2
	du := 1 / float32(opts.Cols-1)
	dv := 1 / float32(opts.Rows-1)

	for i := 0; i < opts.Rows; i++ {
		z := z0 - float64(i)*opts.Spacing
		for j := 0; j < opts.Cols; j++ {
			x := x0 + float64(j)*opts.Spacing
			g.Positions = append(g.Positions, dynamo.V3(x, opts.Height, z))
			g.TexCoords = append(g.TexCoords, [2]float32{float32(j) * du, float32(i) * dv})
		}
	}

	idx, err := StripIndices(opts.Rows, opts.Cols, opts.Layout)
	if err != nil {
		return nil, err
	}
	g.Indices = idx
	g.Links = buildLinks(opts.Rows, opts.Cols, opts.Shear, opts.Bend)

	return g, nil
}

func (g *Grid) Len() int { return g.Rows * g.Cols }

func (g *Grid) Index(row, col int) int { return row*g.Cols + col }

func (g *Grid) RowCol(idx int) (row, col int) { return idx / g.Cols, idx % g.Cols }

// InBounds reports whether (row, col) addresses a grid point.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// TriangleCount is the number of non-degenerate triangles the strip covers.
func (g *Grid) TriangleCount() int { return 2 * (g.Rows - 1) * (g.Cols - 1) }
