package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/topology"
	"github.com/san-kum/clothsim/internal/viz"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// CanvasToSVG converts a braille canvas to SVG, one circle per dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w := int(math.Round(float64(canvas.PixelWidth()) * scale))
	h := int(math.Round(float64(canvas.PixelHeight()) * scale))

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, w, h, w, h)
	sb.WriteString("<g fill=\"#00ff00\">\n")
	r := scale * 0.4
	for y := 0; y < canvas.PixelHeight(); y++ {
		for x := 0; x < canvas.PixelWidth(); x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", (float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots ys against xs as a single polyline, padded by 10% of
// each range. It returns "" for fewer than two samples.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, width, height, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// MeshSVG writes the shaded cloth triangles, painted far to near.
func MeshSVG(w io.Writer, g *topology.Grid, pos []dynamo.Vec3, opts ImageOptions) error {
	if len(pos) != g.Len() {
		return fmt.Errorf("%w: %d positions for a %dx%d grid", dynamo.ErrInvalidState, len(pos), g.Rows, g.Cols)
	}
	opts = opts.withDefaults()
	faces := project(g, pos, opts.View, float64(opts.Width), float64(opts.Height), opts.Margin)

	var sb strings.Builder
	fmt.Fprintf(&sb, svgHeader, opts.Width, opts.Height, opts.Width, opts.Height)
	sb.WriteString("<g stroke-width=\"0.5\" stroke-linejoin=\"round\">\n")
	for _, f := range faces {
		c := svgColor(shade(opts.Fill, f.shade))
		fmt.Fprintf(&sb, "<polygon points=\"%.2f,%.2f %.2f,%.2f %.2f,%.2f\" fill=\"%s\" stroke=\"%s\"/>\n",
			f.px[0][0], f.px[0][1], f.px[1][0], f.px[1][1], f.px[2][0], f.px[2][1], c, c)
	}
	sb.WriteString("</g>\n")
	if opts.Caption != "" {
		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"#cccccc\" font-family=\"sans-serif\" font-size=\"14\">%s</text>\n",
			opts.Height-8, escapeXML(opts.Caption))
	}
	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escapeXML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
