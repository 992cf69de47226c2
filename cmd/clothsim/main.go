package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile  string
	dt          float64
	duration    float64
	integrator  string
	forceModel  string
	rows, cols  int
	substeps    int
	workers     int
	recordEvery int
	runName     string
	saveConfig  string

	pointIdx int
	axisName string

	format   string
	frameIdx int
	viewName string
	outPath  string
	imgW     int
	imgH     int

	frameRate     int
	stepsPerFrame int
	themeName     string
	gifPath       string

	benchSteps int

	paramName  string
	paramMin   float64
	paramMax   float64
	paramSteps int
	transient  float64
	record     float64

	delta    float64
	lyaSteps int

	tuneParams []string
	metricName string
	maximize   bool

	mcParams  []string
	mcPerturb float64
	mcTrials  int
	mcSeed    uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clothsim",
		Short:         "mass-spring cloth simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error, off)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation and store its frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep every n-th frame")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this path (.yaml or .toml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a point trace and the sag of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addPointFlags(plotCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a frame of a stored run as obj, svg, png or json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "obj", "obj, svg, png, json or series")
	exportCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index, negative counts from the end")
	exportCmd.Flags().StringVar(&viewName, "view", "iso", "front, side, top or iso")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().IntVar(&imgW, "width", 800, "image width")
	exportCmd.Flags().IntVar(&imgH, "height", 600, "image height")
	addPointFlags(exportCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [preset...]",
		Short: "measure step throughput per preset and integrator",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 300, "steps per measurement")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 keeps the preset)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of a point trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addPointFlags(analyzeCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of a point trace",
		Args:  cobra.ExactArgs(1),
		RunE:  phaseRun,
	}
	addPointFlags(phaseCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a cloth in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&viewName, "view", "iso", "front, side, top or iso")
	liveCmd.Flags().StringVar(&themeName, "theme", viz.Themes[0].Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&gifPath, "gif", "cloth.gif", "GIF recording path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator...]",
		Short: "run one preset with several integrators concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep a parameter and plot where a point settles",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepParam,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "ks", "body parameter")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 50, "last value")
	sweepCmd.Flags().IntVar(&paramSteps, "steps", 10, "number of values")
	sweepCmd.Flags().Float64Var(&transient, "transient", 3, "seconds to settle")
	sweepCmd.Flags().Float64Var(&record, "record", 2, "seconds to record")
	addPointFlags(sweepCmd)

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "growth rate of a small perturbation",
		Args:  cobra.ExactArgs(1),
		RunE:  lyapunovRun,
	}
	lyapunovCmd.Flags().Float64Var(&delta, "delta", 1e-6, "initial displacement")
	lyapunovCmd.Flags().IntVar(&lyaSteps, "steps", 600, "steps")
	addPointFlags(lyapunovCmd)

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search body parameters against a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneRun,
	}
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "name=v1,v2,... or name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "sag", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	tuneCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "check stability under random parameter perturbations",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringSliceVar(&mcParams, "param", []string{"ks", "kd"}, "parameters to perturb")
	monteCarloCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.2, "relative perturbation")
	monteCarloCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Uint64Var(&mcSeed, "seed", 1, "random seed")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent trials (0 uses all CPUs)")
	monteCarloCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, benchCmd, analyzeCmd, phaseCmd, liveCmd,
		presetsCmd, compareCmd, sweepCmd, lyapunovCmd, tuneCmd, scenarioCmd, monteCarloCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file (.yaml or .toml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame time step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", "verlet", "euler or verlet")
	cmd.Flags().StringVar(&forceModel, "force-model", "damped", "damped or linear")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns")
	cmd.Flags().IntVar(&substeps, "substeps", 1, "passes per step")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers")
}

func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pointIdx, "point", -1, "point index (default: middle of the bottom row)")
	cmd.Flags().StringVar(&axisName, "axis", "y", "x, y or z")
}

func setupLogging(level string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "off", "":
		dynamo.SetLogger(nil)
		return nil
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	dynamo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
