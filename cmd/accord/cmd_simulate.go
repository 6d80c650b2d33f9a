package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/ladder"
	"github.com/accordlab/accord/internal/logging"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/store"
	"github.com/accordlab/accord/internal/strategy"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a seeded escalation simulation",
		Long: `Run a stepwise agent-based escalation simulation.

The simulation draws incidents from the selected domain's incident-type
table, modulated by agent aggression, environmental conditions, agreement
effects, and the strategic risk modifier. Identical seeds produce
identical incident logs.

Examples:
  accord simulate --domain maritime --steps 200 --seed 42
  accord simulate --scenario reef.yaml --effect hotline --effect prenotification
  accord simulate --seed 42 --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			domainName, _ := cmd.Flags().GetString("domain")
			steps, _ := cmd.Flags().GetInt("steps")
			seed, _ := cmd.Flags().GetInt64("seed")
			effects, _ := cmd.Flags().GetStringSlice("effect")
			save, _ := cmd.Flags().GetBool("save")
			legitimacy, _ := cmd.Flags().GetFloat64("legitimacy")
			credibility, _ := cmd.Flags().GetFloat64("credibility")
			domesticSupport, _ := cmd.Flags().GetFloat64("domestic-support")
			diplomaticCapital, _ := cmd.Flags().GetFloat64("diplomatic-capital")

			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}
			logger := newAppLogger(appCfg)

			table, measures, domain, err := resolveContent(scenarioPath, domainName)
			if err != nil {
				return err
			}

			cfg := escalation.DefaultConfig(domain)
			cfg.Steps = appCfg.Simulation.Steps
			if steps > 0 {
				cfg.Steps = steps
			}
			cfg.Seed = seed
			cfg.EnabledEffects = effects
			cfg.Strategic = strategy.Scores{
				DiplomaticCapital: diplomaticCapital,
				Legitimacy:        legitimacy,
				DomesticSupport:   domesticSupport,
				Credibility:       credibility,
			}

			sim, err := escalation.New(cfg, table, measures)
			if err != nil {
				return err
			}

			trace := logging.NewTraceLogger(appCfg.Logging.TraceDir, appCfg.Logging.Level)
			defer trace.Close()
			sim.SetTrace(trace)

			logger.Debug("starting simulation", "domain", domain, "steps", cfg.Steps, "seed", sim.Seed())

			res, err := sim.Run()
			if err != nil {
				return err
			}

			level := ladder.Classify(ladder.Input{
				Pressure:     res.FinalPressure,
				MeanSeverity: res.Summary.MeanSeverity,
			})

			var runID string
			if save {
				cfg.Seed = res.Seed
				rec := &store.RunRecord{Config: cfg, Result: res}
				runStore, err := store.Open(appCfg.Store.Path)
				if err != nil {
					return err
				}
				defer runStore.Close()
				if err := runStore.SaveRun(cmd.Context(), rec); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
				runID = rec.ID
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"seed":           res.Seed,
					"summary":        res.Summary,
					"final_pressure": res.FinalPressure,
					"level":          int(level),
					"level_name":     level.String(),
					"incidents":      res.Incidents,
					"run_id":         runID,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Simulated %d steps in domain %s (seed %d)\n",
				cfg.Steps, domain, res.Seed)
			fmt.Fprintf(cmd.OutOrStdout(), "  incidents: %d  mean severity: %.3f  trend: %+.4f\n",
				res.Summary.Count, res.Summary.MeanSeverity, res.Summary.Trend)
			fmt.Fprintf(cmd.OutOrStdout(), "  final pressure: %.3f  ladder level: %d (%s)\n",
				res.FinalPressure, int(level), level)
			if runID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  saved as %s\n", runID)
			}
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario YAML providing tables and catalogs")
	cmd.Flags().String("domain", "maritime", "Conflict domain")
	cmd.Flags().Int("steps", 0, "Number of steps (default from config)")
	cmd.Flags().Int64("seed", 0, "RNG seed (0 generates one and reports it)")
	cmd.Flags().StringSlice("effect", nil, "Enabled confidence-building measure ID (repeatable)")
	cmd.Flags().Bool("save", false, "Persist the run to the store")
	cmd.Flags().Float64("legitimacy", 50, "Strategic legitimacy score [0,100]")
	cmd.Flags().Float64("credibility", 50, "Strategic credibility score [0,100]")
	cmd.Flags().Float64("domestic-support", 50, "Strategic domestic support score [0,100]")
	cmd.Flags().Float64("diplomatic-capital", 50, "Strategic diplomatic capital score [0,100]")

	return cmd
}

// resolveContent resolves the domain table and measure catalog from an
// optional scenario file, falling back to the built-in catalogs.
func resolveContent(scenarioPath, domainName string) (scenario.DomainTable, []scenario.Measure, models.Domain, error) {
	domain, err := models.ParseDomain(domainName)
	if err != nil {
		return scenario.DomainTable{}, nil, "", err
	}

	if scenarioPath == "" {
		table, err := scenario.BuiltinTable(domain)
		if err != nil {
			return scenario.DomainTable{}, nil, "", err
		}
		return table, scenario.BuiltinMeasures(), domain, nil
	}

	def, err := scenario.Load(scenarioPath)
	if err != nil {
		return scenario.DomainTable{}, nil, "", err
	}
	table, err := def.Table(domain)
	if err != nil {
		return scenario.DomainTable{}, nil, "", err
	}
	return table, def.MeasureCatalog(), domain, nil
}
