package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/experiment"
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	fmt.Printf("Scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}

	results, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nSTEP\tPRESET\tSTEPS\tSAG\tENERGY_DRIFT\tRUN ID")
	for i, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.4f\t%.4g\t%s\n", i+1, r.Step.Preset, r.Result.StepsTaken,
			r.Result.Metrics["sag"], r.Result.Metrics["energy_drift"], id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := presetConfig(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	mc := automation.MonteCarloConfig{
		Base:         cfg,
		Params:       mcParams,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
		Workers:      workers,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, experiment.NewRegistry())
	if err != nil {
		return err
	}

	names := append([]string(nil), mcParams...)
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\t"+strings.ToUpper(strings.Join(names, "\t"))+"\tSAG\tCLAMPED\tSTABLE")
	for _, r := range results {
		row := []string{fmt.Sprint(r.Trial)}
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.4g", r.Params[n]))
		}
		status := fmt.Sprint(r.Stable)
		if r.Err != nil {
			status = "error: " + r.Err.Error()
		}
		row = append(row, fmt.Sprintf("%.4f", r.Sag), fmt.Sprint(r.Clamped), status)
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\n%d stable, %d unstable of %d trials (±%.0f%% on %s)\n",
		stable, unstable, len(results), 100*mcPerturb, strings.Join(names, ", "))
	return nil
}
