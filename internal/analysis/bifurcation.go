package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// BifurcationPoint holds the distinct settled values of one sweep step.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

// BifurcationOptions controls a parameter sweep. Values are recorded from
// the Axis coordinate of point Index after Transient seconds, for Record
// seconds, quantized to Resolution.
type BifurcationOptions struct {
	Param      string
	Min, Max   float64
	Steps      int
	Index      int
	Axis       Axis
	Dt         float64
	Transient  float64
	Record     float64
	Resolution float64
}

// BifurcationDiagram sweeps one body parameter and records the settled
// behaviour of a point: a single value when the cloth comes to rest, a
// spread when it keeps flapping. Each step starts from a freshly built body.
func BifurcationDiagram(build Builder, opts BifurcationOptions) ([]BifurcationPoint, error) {
	if !(opts.Dt > 0) || math.IsInf(opts.Dt, 0) {
		return nil, fmt.Errorf("%w: dt %g", dynamo.ErrInvalidStep, opts.Dt)
	}
	steps := max(opts.Steps, 2)
	res := opts.Resolution
	if !(res > 0) {
		res = 1e-3
	}
	out := make([]BifurcationPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := opts.Min + float64(i)*(opts.Max-opts.Min)/float64(steps-1)
		b, err := build()
		if err != nil {
			return nil, err
		}
		if opts.Index < 0 || opts.Index >= b.Len() {
			return nil, fmt.Errorf("%w: point %d", dynamo.ErrInvalidState, opts.Index)
		}
		if err := b.SetParam(opts.Param, param); err != nil {
			return nil, err
		}
		for b.Time() < opts.Transient {
			if err := b.Step(opts.Dt); err != nil {
				return nil, err
			}
		}

		seen := make(map[int64]bool)
		var values []float64
		end := opts.Transient + opts.Record
		for b.Time() < end {
			if err := b.Step(opts.Dt); err != nil {
				return nil, err
			}
			v := opts.Axis.Of(b.Positions()[opts.Index])
			key := int64(math.Round(v / res))
			if !seen[key] {
				seen[key] = true
				values = append(values, v)
			}
		}
		out = append(out, BifurcationPoint{Param: param, Values: values})
	}
	return out, nil
}

// BifurcationToASCII plots the sweep with the parameter on the x axis.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return ""
	}
	if hi == lo {
		hi = lo + 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for i, p := range data {
		c := min(i*width/len(data), width-1)
		for _, v := range p.Values {
			r := height - 1 - int((v-lo)/(hi-lo)*float64(height-1))
			if r >= 0 && r < height {
				grid[r][c] = '•'
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
