package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/topology"
)

// resolveConfig starts from --config, the named preset or the defaults, and
// applies only the flags the user actually set.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "custom"
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = c
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, "", fmt.Errorf("%w: preset %q (try: %s)", dynamo.ErrUnknownName, args[0], strings.Join(config.ListPresets(), ", "))
		}
		name = args[0]
	default:
		cfg = config.DefaultConfig()
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("force-model") {
		cfg.ForceModel = forceModel
	}
	if f.Changed("rows") {
		cfg.Grid.Rows = rows
	}
	if f.Changed("cols") {
		cfg.Grid.Cols = cols
	}
	if f.Changed("substeps") {
		cfg.Physics.Substeps = substeps
	}
	if f.Changed("workers") {
		cfg.Physics.Workers = workers
	}
	if f.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	return cfg, name, cfg.Validate()
}

func presetConfig(name string) (*config.Config, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: preset %q", dynamo.ErrUnknownName, name)
	}
	return cfg, nil
}

func bodyBuilder(reg *experiment.Registry, cfg *config.Config) analysis.Builder {
	return func() (*cloth.Body, error) { return reg.BuildBody(cfg) }
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	return st, st.Init()
}

type storedRun struct {
	meta   *storage.RunMetadata
	frames []dynamo.Frame
}

func loadRun(id string) (*storedRun, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	frames, err := st.LoadFrames(id)
	if err != nil {
		return nil, fmt.Errorf("load frames %s: %w", id, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: run %s has no frames", dynamo.ErrInvalidState, id)
	}
	return &storedRun{meta: meta, frames: frames}, nil
}

// grid rebuilds the rest topology of a stored run.
func (r *storedRun) grid() (*topology.Grid, error) {
	layout, err := topology.ParseLayout(r.meta.Layout)
	if err != nil {
		return nil, err
	}
	opts := topology.DefaultOptions()
	opts.Rows, opts.Cols, opts.Layout = r.meta.Rows, r.meta.Cols, layout
	if r.meta.Spacing > 0 {
		opts.Spacing = r.meta.Spacing
	}
	if r.meta.Height != 0 {
		opts.Height = r.meta.Height
	}
	return topology.Generate(opts)
}

func (r *storedRun) dt() float64 {
	if len(r.frames) < 2 {
		return r.meta.Dt
	}
	return r.frames[1].Time - r.frames[0].Time
}

// trace extracts the --point/--axis series, defaulting to the middle of
// the bottom row.
func (r *storedRun) trace() (analysis.Trace, analysis.Axis, error) {
	axis, err := analysis.ParseAxis(axisName)
	if err != nil {
		return analysis.Trace{}, 0, err
	}
	idx := pointIdx
	if idx < 0 {
		idx = bottomMiddle(r.meta.Rows, r.meta.Cols)
	}
	tr, err := analysis.PointTrace(r.frames, idx, axis)
	return tr, axis, err
}

func bottomMiddle(rows, cols int) int { return (rows-1)*cols + cols/2 }

func pointOrDefault(cfg *config.Config) int {
	if pointIdx >= 0 {
		return pointIdx
	}
	return bottomMiddle(cfg.Grid.Rows, cfg.Grid.Cols)
}

// output opens --out or falls back to stdout.
func output() (io.Writer, func() error, error) {
	if outPath == "" || outPath == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
