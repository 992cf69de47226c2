package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
	"github.com/san-kum/clothsim/internal/viz"
)

type ImageOptions struct {
	Width, Height int
	Margin        float64
	View          viz.View
	Caption       string
	Background    color.RGBA
	Fill          color.RGBA
	CaptionSize   float64
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Width:       800,
		Height:      600,
		Margin:      24,
		View:        viz.ViewIso,
		Background:  color.RGBA{10, 10, 10, 255},
		Fill:        color.RGBA{70, 170, 230, 255},
		CaptionSize: 14,
	}
}

func (o ImageOptions) withDefaults() ImageOptions {
	d := DefaultImageOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Fill == (color.RGBA{}) {
		o.Fill = d.Fill
	}
	if o.Background == (color.RGBA{}) {
		o.Background = d.Background
	}
	if o.CaptionSize <= 0 {
		o.CaptionSize = d.CaptionSize
	}
	return o
}

func shade(c color.RGBA, k float64) color.RGBA {
	k = math.Max(0, math.Min(1, k))
	return color.RGBA{uint8(float64(c.R) * k), uint8(float64(c.G) * k), uint8(float64(c.B) * k), c.A}
}

// RenderImage rasterizes the shaded cloth with antialiased triangle fills.
func RenderImage(g *topology.Grid, pos []dynamo.Vec3, opts ImageOptions) (*image.RGBA, error) {
	if len(pos) != g.Len() {
		return nil, fmt.Errorf("%w: %d positions for a %dx%d grid", dynamo.ErrInvalidState, len(pos), g.Rows, g.Cols)
	}
	opts = opts.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	faces := project(g, pos, opts.View, float64(opts.Width), float64(opts.Height), opts.Margin)
	z := vector.NewRasterizer(1, 1)
	for _, f := range faces {
		fillTriangle(img, z, f.px, shade(opts.Fill, f.shade))
	}

	if opts.Caption != "" {
		if err := drawCaption(img, opts.Caption, opts.CaptionSize); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// fillTriangle rasterizes into the triangle's clipped bounding box only.
func fillTriangle(dst *image.RGBA, z *vector.Rasterizer, px [3][2]float64, c color.RGBA) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range px {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1).
		Intersect(dst.Bounds())
	if box.Empty() {
		return
	}
	z.Reset(box.Dx(), box.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	z.MoveTo(float32(px[0][0]-ox), float32(px[0][1]-oy))
	z.LineTo(float32(px[1][0]-ox), float32(px[1][1]-oy))
	z.LineTo(float32(px[2][0]-ox), float32(px[2][1]-oy))
	z.ClosePath()
	z.Draw(dst, box, image.NewUniform(c), image.Point{})
}

var captionFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

func drawCaption(dst *image.RGBA, text string, size float64) error {
	f, err := captionFont()
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{204, 204, 204, 255}),
		Face: face,
	}
	descent := face.Metrics().Descent
	d.Dot = fixed.Point26_6{X: fixed.I(8), Y: fixed.I(dst.Bounds().Dy()-8) - descent}
	d.DrawString(text)
	return nil
}

// WritePNG renders the cloth and encodes it as PNG.
func WritePNG(w io.Writer, g *topology.Grid, pos []dynamo.Vec3, opts ImageOptions) error {
	img, err := RenderImage(g, pos, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
