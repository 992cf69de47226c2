package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
)

// numbers prints counts and rates with digit grouping.
var numbers = message.NewPrinter(language.English)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if runName != "" {
		name = runName
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	reg := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(reg); err != nil {
		return err
	}

	fmt.Printf("Running %s: %dx%d %s/%s, %.2fs at dt=%.4g\n",
		name, cfg.Grid.Rows, cfg.Grid.Cols, cfg.Integrator, cfg.ForceModel, cfg.Duration, cfg.Dt)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st, err := openStore()
	if err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Name:       name,
		Integrator: cfg.Integrator,
		ForceModel: cfg.ForceModel,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Rows:       cfg.Grid.Rows,
		Cols:       cfg.Grid.Cols,
		Spacing:    cfg.Grid.Spacing,
		Height:     cfg.Grid.Height,
		Layout:     cfg.Grid.Layout,
		Pin:        cfg.Grid.Pin,
	}
	id, err := st.Save(meta, result)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	numbers.Printf("Completed %d steps in %v (%.0f steps/s)\n", result.StepsTaken, elapsed.Round(time.Millisecond),
		float64(result.StepsTaken)/elapsed.Seconds())
	if n := exp.Body().Saturations(); n > 0 {
		fmt.Printf("Displacement clamp engaged %d times\n", n)
	}
	printMetrics(result.Metrics)
	fmt.Printf("\nRun ID: %s\n", id)
	return nil
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Println("\nMetrics:")
	for _, k := range names {
		fmt.Printf("  %-16s %.6g\n", k, m[k])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs stored in", dataDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGRID\tINTEGRATOR\tFORCE\tSTEPS\tSAG\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\t%d\t%.3f\t%s\n",
			r.ID, r.Name, r.Rows, r.Cols, r.Integrator, r.ForceModel, r.Steps,
			r.Metrics["sag"], r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGRID\tINTEGRATOR\tPIN\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%s\t%s\n", name, p.Grid.Rows, p.Grid.Cols, p.Integrator, p.Grid.Pin, config.Describe(name))
	}
	return w.Flush()
}

// benchPresets times raw body stepping, outside the driver, for every
// preset and registered integrator.
func benchPresets(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}
	if benchSteps < 1 {
		return fmt.Errorf("%w: --steps must be positive", dynamo.ErrInvalidParams)
	}
	reg := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PRESET\tINTEGRATOR\tPOINTS\tSPRINGS\tSTEP\tSTEPS/S\t")
	for _, name := range names {
		base, err := presetConfig(name)
		if err != nil {
			return err
		}
		for _, integ := range reg.ListIntegrators() {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			cfg := base.Clone()
			cfg.Integrator = integ
			if workers > 0 {
				cfg.Physics.Workers = workers
			}
			body, err := reg.BuildBody(cfg)
			if err != nil {
				return err
			}
			start := time.Now()
			for i := 0; i < benchSteps; i++ {
				if err := body.Step(cfg.Dt); err != nil {
					return fmt.Errorf("%s/%s: %w", name, integ, err)
				}
			}
			elapsed := time.Since(start)
			per := elapsed / time.Duration(benchSteps)
			numbers.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%.0f\t\n", name, integ, body.Len(), len(body.Springs()),
				per.Round(time.Microsecond), float64(benchSteps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

// compareIntegrators runs one preset under several integrators at once and
// tabulates their metrics side by side.
func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := presetConfig(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("time") {
		base.Duration = duration
	}
	reg := experiment.NewRegistry()
	integs := args[1:]
	if len(integs) == 0 {
		integs = reg.ListIntegrators()
	}
	for _, name := range integs {
		if _, err := reg.GetIntegrator(name); err != nil {
			return err
		}
	}

	exps := make([]*experiment.Experiment, len(integs))
	ens := sim.NewEnsemble(func(run int) (*sim.Simulator, error) {
		cfg := base.Clone()
		cfg.Integrator = integs[run]
		exps[run] = experiment.New(cfg)
		if err := exps[run].Setup(reg); err != nil {
			return nil, err
		}
		return exps[run].GetSimulator(), nil
	}, len(integs))

	start := time.Now()
	results, err := ens.Run(cmd.Context(), experiment.New(base).SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("Compared %d integrators on %s in %v\n\n", len(integs), args[0], time.Since(start).Round(time.Millisecond))

	metricNames := reg.ListMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\t"+strings.ToUpper(strings.Join(metricNames, "\t")))
	for i, r := range results {
		row := []string{integs[i]}
		for _, m := range metricNames {
			row = append(row, fmt.Sprintf("%.4g", r.Metrics[m]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best := 0
	for i, r := range results {
		if math.Abs(r.Metrics["energy_drift"]) < math.Abs(results[best].Metrics["energy_drift"]) {
			best = i
		}
	}
	fmt.Printf("\nLowest energy drift: %s\n", integs[best])
	return nil
}
