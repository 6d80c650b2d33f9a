package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/config"
	"github.com/accordlab/accord/internal/logging"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "accord",
		Short: "Accord - negotiation evaluation and conflict escalation simulation",
		Long: `accord evaluates negotiation offers and simulates conflict escalation.

It scores agreement proposals against multi-attribute party preferences
(BATNA, ZOPA, Pareto efficiency, Nash product), runs seeded agent-based
escalation simulations, classifies states on a 9-level escalation ladder,
and validates simulated output against historical incident records.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("db", "", "Run store database path (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newEvaluateCmd(),
		newSimulateCmd(),
		newClassifyCmd(),
		newValidateCmd(),
		newCalibrateCmd(),
		newRunsCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "accord version %s\n", version)
			}
		},
	}
}

// loadAppConfig loads the merged configuration and applies CLI overrides.
func loadAppConfig(cmd *cobra.Command) (*config.AccordConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newAppLogger builds the operational logger from the configuration.
func newAppLogger(cfg *config.AccordConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, os.Stderr)
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the accord home directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			homeDir, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			accordDir := filepath.Join(homeDir, ".accord")
			if err := os.MkdirAll(accordDir, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", accordDir, err)
			}

			configPath := filepath.Join(accordDir, "config.yaml")
			created := false
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				content := `# accord configuration
logging:
  level: info
simulation:
  steps: 200
  replications: 100
`
				if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				created = true
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"dir":            accordDir,
					"config":         configPath,
					"config_created": created,
				})
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s with default config\n", accordDir)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already initialized\n", accordDir)
			}
			return nil
		},
	}
}
