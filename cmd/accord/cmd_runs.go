package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage stored simulation runs and datasets",
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsDeleteCmd(),
		newRunsExportCmd(),
		newRunsImportDatasetCmd(),
	)

	return cmd
}

// openRunStore opens the configured run store for a subcommand.
func openRunStore(cmd *cobra.Command) (*store.RunStore, error) {
	appCfg, err := loadAppConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(appCfg.Store.Path)
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			s, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			infos, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(infos)
			}

			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-11s seed=%-12d steps=%-5d incidents=%-4d severity=%.3f\n",
					info.ID, info.CreatedAt.Format(time.DateTime), info.Domain,
					info.Seed, info.Steps, info.IncidentCount, info.MeanSeverity)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum entries (0 = all)")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one stored run in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rec, err := s.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rec)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s (%s)\n", rec.ID, rec.CreatedAt.Format(time.DateTime))
			fmt.Fprintf(cmd.OutOrStdout(), "  domain=%s seed=%d steps=%d\n",
				rec.Config.Domain, rec.Result.Seed, rec.Config.Steps)
			fmt.Fprintf(cmd.OutOrStdout(), "  incidents=%d mean severity=%.3f trend=%+.4f final pressure=%.3f\n",
				rec.Result.Summary.Count, rec.Result.Summary.MeanSeverity,
				rec.Result.Summary.Trend, rec.Result.FinalPressure)
			for _, inc := range rec.Result.Incidents {
				fmt.Fprintf(cmd.OutOrStdout(), "  step %-4d %-18s severity=%.3f %v\n",
					inc.Step, inc.Type, inc.Severity, inc.Participants)
			}
			return nil
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newRunsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Export a run's incident log to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = args[0] + ".jsonl"
			}

			s, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ExportRunJSONL(cmd.Context(), args[0], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], out)
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output file (default: RUN_ID.jsonl)")
	return cmd
}

func newRunsImportDatasetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-dataset NAME FILE",
		Short: "Import a historical incident dataset from a JSONL file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.ImportHistoricalJSONL(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into dataset %q\n", n, args[0])
			return nil
		},
	}
}
