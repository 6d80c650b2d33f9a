package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/ladder"
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a simulation state on the 9-level escalation ladder",
		Long: `Map pressure, recent mean incident severity, and a proposed action's
risk score to one of 9 ordinal escalation levels, with an ordered
graduated de-escalation sequence for the level.

Examples:
  accord classify --pressure 0.6 --severity 0.5
  accord classify --pressure 0.8 --severity 0.7 --action-risk 0.5 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			pressure, _ := cmd.Flags().GetFloat64("pressure")
			severity, _ := cmd.Flags().GetFloat64("severity")
			actionRisk, _ := cmd.Flags().GetFloat64("action-risk")

			level := ladder.Classify(ladder.Input{
				Pressure:     pressure,
				MeanSeverity: severity,
				ActionRisk:   actionRisk,
			})
			sequence := ladder.DeescalationSequence(level)

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"level":    int(level),
					"name":     level.String(),
					"sequence": sequence,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Level %d: %s\n", int(level), level)
			if len(sequence) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No de-escalation needed.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "De-escalation sequence:")
			for _, step := range sequence {
				marker := "unilateral"
				if step.RequiresReciprocation {
					marker = "requires reciprocation"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s (%s) - %s\n",
					step.Order, step.Action, marker, step.Description)
			}
			return nil
		},
	}

	cmd.Flags().Float64("pressure", 0, "Current escalation pressure [0,1]")
	cmd.Flags().Float64("severity", 0, "Recent mean incident severity [0,1]")
	cmd.Flags().Float64("action-risk", 0, "Risk score of a proposed action [0,1]")

	return cmd
}
