package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/bargain"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/utility"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate --scenario FILE --offering PARTY --set issue=value ...",
		Short: "Evaluate an agreement offer for every party in a scenario",
		Long: `Evaluate an agreement offer against every party's preferences.

The agreement is given as repeated --set flags. Values are numeric levels
in [0,1], option names for categorical issues, or the literal "unchanged"
to keep an issue at the status quo.

Examples:
  accord evaluate --scenario reef.yaml --offering blue \
    --set security_provisions=0.7 --set fishing_access=seasonal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			scenarioPath, _ := cmd.Flags().GetString("scenario")
			offering, _ := cmd.Flags().GetString("offering")
			sets, _ := cmd.Flags().GetStringToString("set")
			framing, _ := cmd.Flags().GetFloat64("framing")

			if scenarioPath == "" {
				return fmt.Errorf("--scenario is required")
			}
			if offering == "" {
				return fmt.Errorf("--offering is required")
			}
			if len(sets) == 0 {
				return fmt.Errorf("at least one --set issue=value is required")
			}

			def, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}

			raw := make(map[string]any, len(sets))
			for k, v := range sets {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					raw[k] = f
				} else {
					raw[k] = v
				}
			}
			av, err := def.ParseAgreement(raw)
			if err != nil {
				return err
			}

			model := utility.New(utility.DefaultConfig())
			engine := bargain.NewEngine(model, bargain.DefaultConfig())
			for _, p := range def.Parties {
				if err := engine.AddParty(p); err != nil {
					return err
				}
			}

			eval, err := engine.EvaluateOffer(offering, av)
			if err != nil {
				return err
			}

			// A non-neutral framing reweights the displayed utilities;
			// ZOPA, Pareto, and Nash stay on the neutral frame.
			if framing != 1.0 {
				for _, p := range engine.Parties() {
					framed, err := model.ComputeFramed(p, av, framing)
					if err != nil {
						return err
					}
					eval.Utilities[p.ID] = framed
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(eval)
			}

			ids := make([]string, 0, len(eval.Utilities))
			for id := range eval.Utilities {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			fmt.Fprintf(cmd.OutOrStdout(), "Offer by %s:\n", offering)
			for _, id := range ids {
				u := eval.Utilities[id]
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s utility=%.3f margin=%+.3f accept=%.1f%%\n",
					id, u.Utility, u.Margin, 100*u.AcceptanceProbability)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ZOPA: %v  Pareto-efficient: %v  Nash product: %.4f\n",
				eval.ZOPAExists, eval.ParetoEfficient, eval.NashProduct)
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Scenario YAML file")
	cmd.Flags().String("offering", "", "ID of the party making the offer")
	cmd.Flags().StringToString("set", nil, "Issue assignment issue=value (repeatable)")
	cmd.Flags().Float64("framing", 1.0, "Framing multiplier applied to the prospect value")

	return cmd
}
