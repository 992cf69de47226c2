package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
)

const (
	plotWidth  = 70
	plotHeight = 15
)

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tr, axis, err := run.trace()
	if err != nil {
		return err
	}

	sag := metrics.NewSag(nil)
	sagHist := make([]float64, len(run.frames))
	for i, f := range run.frames {
		sag.Observe(f)
		sagHist[i] = sag.Current()
	}

	fmt.Printf("Run %s: %s, %d frames\n\n", run.meta.ID, run.meta.Name, len(run.frames))
	fmt.Println(asciigraph.Plot(tr.Position,
		asciigraph.Height(plotHeight), asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("point %s over %.2fs", axis, tr.Times[len(tr.Times)-1]))))
	fmt.Println()
	fmt.Println(asciigraph.Plot(sagHist,
		asciigraph.Height(plotHeight/2), asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("sag (max %.3f)", sag.Value()))))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tr, axis, err := run.trace()
	if err != nil {
		return err
	}
	step := run.dt()
	if !(step > 0) || len(tr.Position) < 4 {
		return fmt.Errorf("%w: need at least 4 evenly spaced frames", dynamo.ErrInvalidState)
	}

	freqs, power := analysis.PowerSpectrum(tr.Position, step)
	dom := analysis.DominantFrequency(tr.Position, step)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range tr.Position {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	fmt.Printf("Run %s, point %s\n", run.meta.ID, axis)
	fmt.Printf("  samples     %d at %.4gs\n", len(tr.Position), step)
	fmt.Printf("  range       %.4f .. %.4f\n", lo, hi)
	if dom > 0 {
		fmt.Printf("  dominant    %.4f Hz (period %.4fs)\n", dom, 1/dom)
	} else {
		fmt.Println("  dominant    none")
	}
	fmt.Printf("  resolution  %.4f Hz, Nyquist %.2f Hz\n\n", freqs[1], freqs[len(freqs)-1])

	// the interesting part of a cloth spectrum sits well below Nyquist
	n := min(len(power), max(plotWidth, len(power)/4))
	fmt.Println(asciigraph.Plot(power[1:n],
		asciigraph.Height(plotHeight), asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("power 0..%.2f Hz", freqs[n-1]))))
	return nil
}

func phaseRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tr, axis, err := run.trace()
	if err != nil {
		return err
	}
	if tr.Velocity == nil {
		tr = tr.WithVelocity()
	}
	pp := analysis.NewPhasePortrait(tr, axis)
	fmt.Printf("Phase portrait of point %s (%d samples)\n\n", axis, len(pp.Points))
	fmt.Println(analysis.PlotASCII(pp.Points, plotWidth, 2*plotHeight))

	var mean float64
	for _, v := range tr.Position {
		mean += v
	}
	mean /= float64(len(tr.Position))
	cross := analysis.PoincareSection(tr, mean)
	fmt.Printf("\nUpward crossings of %.4f: %d\n", mean, len(cross))
	for i, c := range cross {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(cross)-i)
			break
		}
		fmt.Printf("  t=%8.3f  v=%+.4f\n", c.X, c.Y)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	idx := frameIdx
	if idx < 0 {
		idx += len(run.frames)
	}
	if idx < 0 || idx >= len(run.frames) {
		return fmt.Errorf("%w: frame %d of %d", dynamo.ErrInvalidState, frameIdx, len(run.frames))
	}
	frame := run.frames[idx]

	w, closeOut, err := output()
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "json":
		res := &sim.Result{
			Frames:     run.frames,
			Times:      make([]float64, len(run.frames)),
			StepsTaken: run.meta.Steps,
			Metrics:    run.meta.Metrics,
		}
		for i, f := range run.frames {
			res.Times[i] = f.Time
		}
		err = storage.ExportJSON(w, *run.meta, res)
	case "series":
		var tr analysis.Trace
		if tr, _, err = run.trace(); err == nil {
			_, err = fmt.Fprintln(w, export.SeriesToSVG(tr.Times, tr.Position, imgW, imgH, "#46aae6"))
		}
	case "obj", "svg", "png":
		err = exportMesh(w, run, frame)
	default:
		err = fmt.Errorf("%w: format %q", dynamo.ErrUnknownName, format)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err == nil && outPath != "" {
		fmt.Printf("Exported frame %d (t=%.3fs) of %s to %s\n", frame.Step, frame.Time, run.meta.ID, outPath)
	}
	return err
}

func exportMesh(w io.Writer, run *storedRun, frame dynamo.Frame) error {
	g, err := run.grid()
	if err != nil {
		return err
	}
	if strings.EqualFold(format, "obj") {
		return export.WriteOBJ(w, g, frame.Positions)
	}
	view, err := viz.ParseView(viewName)
	if err != nil {
		return err
	}
	opts := export.DefaultImageOptions()
	opts.Width, opts.Height, opts.View = imgW, imgH, view
	opts.Caption = fmt.Sprintf("%s  t=%.2fs  %s", run.meta.Name, frame.Time, run.meta.Integrator)
	if strings.EqualFold(format, "svg") {
		return export.MeshSVG(w, g, frame.Positions, opts)
	}
	return export.WritePNG(w, g, frame.Positions, opts)
}
