package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/godocsearch/internal/config"
	"github.com/dshills/godocsearch/internal/indexer"
	"github.com/dshills/godocsearch/internal/logging"
	"github.com/dshills/godocsearch/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "godocsearch"
)

// ServerVersion is reported during the MCP handshake; set by the CLI
var ServerVersion = "dev"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	indexer *indexer.Indexer
	config  *config.Config
	logger  *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	store, err := storage.NewSQLiteStorage(cfg.Index.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
		indexer: indexer.New(store),
		config:  cfg,
		logger:  logging.WithComponent("mcp"),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	s.logger.Info("serving MCP over stdio", "version", ServerVersion, "storage", storage.BuildMode)
	return server.ServeStdio(s.mcp)
}

// Close releases the catalog without serving
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(buildSearchIndexTool(), s.handleBuildSearchIndex)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
