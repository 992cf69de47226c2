package main

import (
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	view, err := viz.ParseView(viewName)
	if err != nil {
		return err
	}
	opts := viz.DefaultOptions()
	opts.Title = name
	opts.Dt = cfg.Dt
	opts.FPS = frameRate
	opts.StepsPerFrame = stepsPerFrame
	opts.View = view
	opts.Theme = themeName
	opts.GIFPath = gifPath
	return viz.Run(viz.Builder(bodyBuilder(experiment.NewRegistry(), cfg)), opts)
}

// pickerFields are the knobs offered on the setup screen of every preset.
var pickerFields = []struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}{
	{"rows", 1, func(c *config.Config) float64 { return float64(c.Grid.Rows) }, func(c *config.Config, v float64) { c.Grid.Rows = int(math.Round(v)) }},
	{"cols", 1, func(c *config.Config) float64 { return float64(c.Grid.Cols) }, func(c *config.Config, v float64) { c.Grid.Cols = int(math.Round(v)) }},
	{"ks", 1, func(c *config.Config) float64 { return c.Physics.Stiffness }, func(c *config.Config, v float64) { c.Physics.Stiffness = v }},
	{"kd", 0.05, func(c *config.Config) float64 { return c.Physics.Damping }, func(c *config.Config, v float64) { c.Physics.Damping = v }},
	{"air", 0.01, func(c *config.Config) float64 { return c.Physics.AirResistance }, func(c *config.Config, v float64) { c.Physics.AirResistance = v }},
	{"wind_x", 0.5, func(c *config.Config) float64 { return c.Physics.Wind[0] }, func(c *config.Config, v float64) { c.Physics.Wind[0] = v }},
	{"wind_z", 0.5, func(c *config.Config) float64 { return c.Physics.Wind[2] }, func(c *config.Config, v float64) { c.Physics.Wind[2] = v }},
}

func pickerEntries() []viz.Entry {
	var entries []viz.Entry
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		e := viz.Entry{Name: name, Info: config.Describe(name)}
		for _, f := range pickerFields {
			e.Fields = append(e.Fields, viz.Field{Name: f.name, Value: f.get(cfg), Step: f.step})
		}
		entries = append(entries, e)
	}
	return entries
}

func launchPreset(name string, values map[string]float64) (viz.Builder, viz.Options, error) {
	cfg, err := presetConfig(name)
	if err != nil {
		return nil, viz.Options{}, err
	}
	for _, f := range pickerFields {
		if v, ok := values[f.name]; ok {
			f.set(cfg, v)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, viz.Options{}, err
	}
	opts := viz.DefaultOptions()
	opts.Title = name
	opts.Dt = cfg.Dt
	return viz.Builder(bodyBuilder(experiment.NewRegistry(), cfg)), opts, nil
}

func runPicker() error {
	return viz.RunPicker(pickerEntries(), launchPreset)
}

func sweepParam(cmd *cobra.Command, args []string) error {
	cfg, err := presetConfig(args[0])
	if err != nil {
		return err
	}
	axis, err := analysis.ParseAxis(axisName)
	if err != nil {
		return err
	}
	opts := analysis.BifurcationOptions{
		Param:      paramName,
		Min:        paramMin,
		Max:        paramMax,
		Steps:      paramSteps,
		Index:      pointOrDefault(cfg),
		Axis:       axis,
		Dt:         cfg.Dt,
		Transient:  transient,
		Record:     record,
		Resolution: 1e-3,
	}
	fmt.Printf("Sweeping %s over [%g, %g] on %s, point %d %s\n\n", paramName, paramMin, paramMax, args[0], opts.Index, axis)
	data, err := analysis.BifurcationDiagram(bodyBuilder(experiment.NewRegistry(), cfg), opts)
	if err != nil {
		return err
	}
	fmt.Println(analysis.BifurcationToASCII(data, plotWidth, 2*plotHeight))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\n%s\tVALUES\tMIN\tMAX\n", strings.ToUpper(paramName))
	for _, p := range data {
		if len(p.Values) == 0 {
			fmt.Fprintf(w, "%.4g\t0\t-\t-\n", p.Param)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%d\t%.4f\t%.4f\n", p.Param, len(p.Values), slices.Min(p.Values), slices.Max(p.Values))
	}
	return w.Flush()
}

func lyapunovRun(cmd *cobra.Command, args []string) error {
	cfg, err := presetConfig(args[0])
	if err != nil {
		return err
	}
	idx := pointOrDefault(cfg)
	rate, err := analysis.LyapunovExponent(bodyBuilder(experiment.NewRegistry(), cfg), idx, delta, cfg.Dt, lyaSteps)
	if err != nil {
		return err
	}
	fmt.Printf("Perturbation growth on %s (point %d, delta %g, %d steps)\n", args[0], idx, delta, lyaSteps)
	switch {
	case math.IsInf(rate, -1):
		fmt.Println("  rate: -inf (trajectories never separated)")
	case rate > 0.01:
		fmt.Printf("  rate: %.4f /s, perturbations grow\n", rate)
	default:
		fmt.Printf("  rate: %.4f /s, perturbations decay or stay bounded\n", rate)
	}
	return nil
}

// parseRange accepts "name=v1,v2,..." or "name=lo:hi:n".
func parseRange(spec string) (string, []float64, error) {
	name, vals, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("%w: --param %q, want name=values", dynamo.ErrInvalidParams, spec)
	}
	if parts := strings.Split(vals, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return "", nil, fmt.Errorf("%w: --param %q", dynamo.ErrInvalidParams, spec)
		}
		return name, optim.Linspace(lo, hi, n), nil
	}
	var out []float64
	for _, s := range strings.Split(vals, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: --param %q: %v", dynamo.ErrInvalidParams, spec, err)
		}
		out = append(out, v)
	}
	return name, out, nil
}

func tuneRun(cmd *cobra.Command, args []string) error {
	cfg, err := presetConfig(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if len(tuneParams) == 0 {
		tuneParams = []string{"ks=5:50:4"}
	}
	var names []string
	var ranges [][]float64
	for _, spec := range tuneParams {
		name, vals, err := parseRange(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.Maximize = maximize

	best, val, trials, err := gs.Search(cmd.Context(), experiment.NewRegistry(), cfg, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, t := range trials {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.4g", t.Params[n]))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6g", t.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%.4g", k, best[k])
	}
	fmt.Printf("\nBest %s = %.6g at %s\n", metricName, val, strings.Join(parts, " "))
	return nil
}
