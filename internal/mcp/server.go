// ABOUTME: MCP server setup for the fitplan engine.
// ABOUTME: Wraps the MCP server with the planner, repository and catalogs.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/fitplan/internal/planner"
	"github.com/harperreed/fitplan/internal/storage"
)

// Catalogs is the content source the server reads and can reload.
type Catalogs interface {
	planner.Catalogs
	Invalidate()
}

// Server wraps the MCP server with planner and storage access.
type Server struct {
	mcpServer *mcp.Server
	planner   *planner.Planner
	repo      storage.Repository
	catalogs  Catalogs
	logger    *slog.Logger
}

// NewServer creates a new MCP server. p must be built over repo and catalogs.
func NewServer(p *planner.Planner, repo storage.Repository, catalogs Catalogs, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fitplan",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{Instructions: instructions},
	)

	s := &Server{
		mcpServer: mcpServer,
		planner:   p,
		repo:      repo,
		catalogs:  catalogs,
		logger:    logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

const instructions = `Plans are keyed by user id and date (YYYY-MM-DD, default today).
Call set_profile before generate_plan; a missing profile is reported as
"complete your profile first". Regenerating a day replaces its meals and
workout but keeps water and adaptation.`

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server started", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
