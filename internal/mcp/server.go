// Package mcp provides an MCP (Model Context Protocol) server for accord.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accordlab/accord/internal/config"
	"github.com/accordlab/accord/internal/store"
)

// Server wraps the MCP SDK server and exposes the engine as tools.
type Server struct {
	server *sdk.Server
	store  *store.RunStore
	cfg    *config.AccordConfig
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "accord")
	Version string // Server version
	Accord  *config.AccordConfig
}

// NewServer creates a new MCP server with accord tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Accord == nil {
		cfg.Accord = config.Default()
	}

	runStore, err := store.Open(cfg.Accord.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		store:  runStore,
		cfg:    cfg.Accord,
	}

	if err := s.registerTools(); err != nil {
		runStore.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server over stdio transport. It blocks until the
// client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	s.store.Close()

	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}
