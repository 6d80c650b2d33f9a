package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accordlab/accord/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run an MCP (Model Context Protocol) server exposing the engine as
tools: accord_evaluate, accord_simulate, accord_classify,
accord_validate, accord_calibrate, and accord_runs.

The server speaks stdio transport and blocks until the client
disconnects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "accord",
				Version: version,
				Accord:  appCfg,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
