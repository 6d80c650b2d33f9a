package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/store"
	"github.com/accordlab/accord/internal/validation"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the simulation against a historical incident dataset",
		Long: `Run replicated simulations and compare aggregate incident statistics
against a historical dataset: RMSE on frequency, Pearson correlation on
severity, a weighted composite accuracy, and a bootstrap confidence
interval.

The dataset comes from the scenario file's historical section, from a
named dataset in the run store (--dataset), or from a JSONL file
(--dataset-file).

Examples:
  accord validate --scenario reef.yaml --replications 100
  accord validate --dataset scs-2023 --domain maritime --seed 42
  accord validate --dataset-file incidents.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			dataset, _ := cmd.Flags().GetString("dataset")
			datasetFile, _ := cmd.Flags().GetString("dataset-file")
			domainName, _ := cmd.Flags().GetString("domain")
			replications, _ := cmd.Flags().GetInt("replications")
			steps, _ := cmd.Flags().GetInt("steps")
			seed, _ := cmd.Flags().GetInt64("seed")
			effects, _ := cmd.Flags().GetStringSlice("effect")

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

			vCfg := validation.DefaultConfig()
			vCfg.Replications = appCfg.Simulation.Replications
			if replications > 0 {
				vCfg.Replications = replications
			}

			simCfg := escalation.DefaultConfig(domain)
			simCfg.Steps = appCfg.Simulation.Steps
			if steps > 0 {
				simCfg.Steps = steps
			}
			simCfg.Seed = seed
			simCfg.EnabledEffects = effects

			logger.Debug("starting validation batch",
				"domain", domain, "replications", vCfg.Replications, "periods", len(historical))

			report, err := validation.Run(cmd.Context(), vCfg, simCfg, table, measures, historical)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Validation over %d replications (%d failed):\n",
				report.Replications, report.Failed)
			fmt.Fprintf(cmd.OutOrStdout(), "  frequency RMSE:       %.4f\n", report.FrequencyRMSE)
			fmt.Fprintf(cmd.OutOrStdout(), "  severity correlation: %.4f\n", report.SeverityCorrelation)
			fmt.Fprintf(cmd.OutOrStdout(), "  overall accuracy:     %.4f\n", report.OverallAccuracy)
			fmt.Fprintf(cmd.OutOrStdout(), "  mean incident count:  %.2f  (95%% CI [%.2f, %.2f])\n",
				report.MeanIncidentCount, report.ConfidenceInterval.Low, report.ConfidenceInterval.High)
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario YAML with a historical dataset")
	cmd.Flags().String("dataset", "", "Named historical dataset in the run store")
	cmd.Flags().String("dataset-file", "", "Historical dataset JSONL file")
	cmd.Flags().String("domain", "maritime", "Conflict domain")
	cmd.Flags().Int("replications", 0, "Number of replications (default from config)")
	cmd.Flags().Int("steps", 0, "Steps per replication (default from config)")
	cmd.Flags().Int64("seed", 0, "Batch seed (0 generates one)")
	cmd.Flags().StringSlice("effect", nil, "Enabled confidence-building measure ID (repeatable)")

	return cmd
}

// resolveHistorical loads the historical dataset from whichever source
// was given: scenario file, store dataset, or JSONL file.
func resolveHistorical(cmd *cobra.Command, storePath, scenarioPath, dataset, datasetFile string) ([]models.HistoricalIncidentRecord, error) {
	switch {
	case datasetFile != "":
		return store.ReadHistoricalJSONL(datasetFile)
	case dataset != "":
		runStore, err := store.Open(storePath)
		if err != nil {
			return nil, err
		}
		defer runStore.Close()
		return runStore.Historical(cmd.Context(), dataset)
	case scenarioPath != "":
		def, err := scenario.Load(scenarioPath)
		if err != nil {
			return nil, err
		}
		if len(def.Historical) == 0 {
			return nil, fmt.Errorf("scenario %s has no historical dataset", scenarioPath)
		}
		return def.Historical, nil
	default:
		return nil, fmt.Errorf("a dataset is required: --scenario, --dataset, or --dataset-file")
	}
}
