package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/calibrate"
	"github.com/accordlab/accord/internal/escalation"
)

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Search parameter ranges for the best fit against historical data",
		Long: `Search simulation parameter ranges by random sampling, scoring each
candidate with a validation batch and keeping the best.

Ranges are given as repeated --range name=min:max flags. Valid names:
encounter_rate, pressure_initial, pressure_growth, pressure_decay,
cooling_rate, media_visibility.

The search stops at its iteration budget; an interrupted search still
reports the best candidate found so far.

Examples:
  accord calibrate --scenario reef.yaml --range encounter_rate=0.01:0.1
  accord calibrate --dataset scs-2023 --range cooling_rate=0.01:0.05 \
    --target severity_correlation --iterations 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			dataset, _ := cmd.Flags().GetString("dataset")
			datasetFile, _ := cmd.Flags().GetString("dataset-file")
			domainName, _ := cmd.Flags().GetString("domain")
			rangeSpecs, _ := cmd.Flags().GetStringSlice("range")
			target, _ := cmd.Flags().GetString("target")
			iterations, _ := cmd.Flags().GetInt("iterations")
			replications, _ := cmd.Flags().GetInt("replications")
			seed, _ := cmd.Flags().GetInt64("seed")

			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}
			logger := newAppLogger(appCfg)

			table, measures, domain, err := resolveContent(scenarioPath, domainName)
			if err != nil {
				return err
			}
			historical, err := resolveHistorical(cmd, appCfg.Store.Path, scenarioPath, dataset, datasetFile)
			if err != nil {
				return err
			}

			ranges, err := parseRanges(rangeSpecs)
			if err != nil {
				return err
			}

			cCfg := calibrate.DefaultConfig()
			cCfg.Ranges = ranges
			if target != "" {
				cCfg.Target = target
			}
			if iterations > 0 {
				cCfg.Iterations = iterations
			}
			if replications > 0 {
				cCfg.Validation.Replications = replications
			}

			simCfg := escalation.DefaultConfig(domain)
			simCfg.Steps = appCfg.Simulation.Steps
			simCfg.Seed = seed

			logger.Debug("starting calibration",
				"domain", domain, "iterations", cCfg.Iterations, "target", cCfg.Target)

			result, err := calibrate.Run(cmd.Context(), cCfg, simCfg, table, measures, historical)
			if err != nil {
				return err
			}
			if result.TimedOut {
				logger.Warn("calibration cut off before budget", "iterations", result.Iterations)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Calibration: %d iterations, score %.4f (%s)\n",
				result.Iterations, result.AchievedScore, cCfg.Target)
			if result.TimedOut {
				fmt.Fprintln(cmd.OutOrStdout(), "  warning: search cut off before its budget; result is best-so-far")
			}
			names := make([]string, 0, len(result.BestParams))
			for name := range result.BestParams {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %.5f\n", name, result.BestParams[name])
			}
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario YAML with a historical dataset")
	cmd.Flags().String("dataset", "", "Named historical dataset in the run store")
	cmd.Flags().String("dataset-file", "", "Historical dataset JSONL file")
	cmd.Flags().String("domain", "maritime", "Conflict domain")
	cmd.Flags().StringSlice("range", nil, "Parameter range name=min:max (repeatable)")
	cmd.Flags().String("target", "", "Metric to maximize (default: overall_accuracy)")
	cmd.Flags().Int("iterations", 0, "Sampling budget (default: 50)")
	cmd.Flags().Int("replications", 0, "Replications per candidate (default: 20)")
	cmd.Flags().Int64("seed", 0, "Search seed (0 generates one)")

	return cmd
}

// parseRanges parses repeated name=min:max specs.
func parseRanges(specs []string) ([]calibrate.ParamRange, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --range name=min:max is required")
	}
	ranges := make([]calibrate.ParamRange, 0, len(specs))
	for _, spec := range specs {
		name, bounds, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid range %q: expected name=min:max", spec)
		}
		lo, hi, ok := strings.Cut(bounds, ":")
		if !ok {
			return nil, fmt.Errorf("invalid range %q: expected name=min:max", spec)
		}
		min, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", spec, err)
		}
		max, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", spec, err)
		}
		ranges = append(ranges, calibrate.ParamRange{Name: name, Min: min, Max: max})
	}
	return ranges, nil
}
