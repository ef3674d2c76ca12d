package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/godocsearch/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Index.CatalogPath = ":memory:"
	cfg.Index.Workers = 2

	server, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

func TestServer_Initialization(t *testing.T) {
	t.Run("server has all required components", func(t *testing.T) {
		server := newTestServer(t)

		assert.NotNil(t, server.mcp, "MCP server should be initialized")
		assert.NotNil(t, server.storage, "Storage should be initialized")
		assert.NotNil(t, server.indexer, "Indexer should be initialized")
		assert.NotNil(t, server.config)
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		server, err := NewServer(nil)
		require.NoError(t, err)
		defer func() { _ = server.Close() }()

		assert.Equal(t, config.Default().Index.Output, server.config.Index.Output)
	})

	t.Run("file catalog", func(t *testing.T) {
		cfg := config.Default()
		cfg.Index.CatalogPath = t.TempDir() + "/catalog.db"

		server, err := NewServer(cfg)
		require.NoError(t, err)
		assert.NoError(t, server.Close())
	})

	t.Run("unwritable catalog fails", func(t *testing.T) {
		cfg := config.Default()
		cfg.Index.CatalogPath = t.TempDir() + "/missing/dir/catalog.db"

		_, err := NewServer(cfg)
		assert.Error(t, err)
	})
}

func TestServerConstants(t *testing.T) {
	assert.NotEmpty(t, ServerName)
	assert.NotEmpty(t, ServerVersion)
}

func TestToolSchemas(t *testing.T) {
	build := buildSearchIndexTool()
	assert.Equal(t, "build_search_index", build.Name)
	assert.Equal(t, []string{"path"}, build.InputSchema.Required)
	for _, prop := range []string{"path", "output", "format", "include_tests", "include_vendor", "snippet_limit"} {
		assert.Contains(t, build.InputSchema.Properties, prop)
	}

	status := indexStatusTool()
	assert.Equal(t, "index_status", status.Name)
	assert.Empty(t, status.InputSchema.Required)
}
