package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/godocsearch/internal/indexer"
	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain Go packages
	ErrorCodeIndexingInProgress = -32002 // Another build is already running
)

// handleBuildSearchIndex handles the build_search_index tool invocation
func (s *Server) handleBuildSearchIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	cfg := &indexer.Config{
		Workers:       s.config.Index.Workers,
		IncludeTests:  getBoolDefault(args, "include_tests", s.config.Index.IncludeTests),
		IncludeVendor: getBoolDefault(args, "include_vendor", false),
		SnippetLimit:  getIntDefault(args, "snippet_limit", s.config.Index.SnippetLimit),
		Output:        getStringDefault(args, "output", s.config.Index.Output),
	}
	if cfg.SnippetLimit < 10 {
		return nil, newMCPError(ErrorCodeInvalidParams, "snippet_limit must be at least 10", map[string]interface{}{
			"param": "snippet_limit",
			"value": cfg.SnippetLimit,
		})
	}
	if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(path, cfg.Output)
	}

	format := getStringDefault(args, "format", s.config.Index.Format)
	if format != "" {
		f, err := searchindex.ParseFormat(format)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid format", map[string]interface{}{
				"param":   "format",
				"value":   format,
				"allowed": []string{"js", "json"},
			})
		}
		cfg.Format = f
	}

	stats, err := s.indexer.Build(ctx, path, cfg)
	if err != nil {
		return nil, buildError(err, path)
	}

	response := map[string]interface{}{
		"built":             true,
		"build_id":          stats.BuildID,
		"module":            stats.ModulePath,
		"packages":          stats.Packages,
		"files_parsed":      stats.FilesParsed,
		"files_failed":      stats.FilesFailed,
		"entries":           stats.Entries,
		"entries_by_kind":   stats.EntriesByKind,
		"ngrams":            stats.Ngrams,
		"fingerprint_bytes": stats.FingerprintBytes,
		"artifact":          stats.ArtifactPath,
		"artifact_size":     humanize.Bytes(uint64(stats.ArtifactBytes)),
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	building := s.indexer.Building()

	build, err := s.indexer.Status(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed":  false,
			"building": building,
			"message":  "No search index built yet. Use build_search_index to build one.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get build status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":  build.Status == storage.BuildSucceeded,
		"building": building,
		"build": map[string]interface{}{
			"id":          build.ID,
			"status":      string(build.Status),
			"root":        build.RootPath,
			"module":      build.ModulePath,
			"started_at":  build.StartedAt.Format(time.RFC3339),
			"started":     humanize.Time(build.StartedAt),
			"duration_ms": build.Duration().Milliseconds(),
		},
		"statistics": map[string]interface{}{
			"packages":      build.Packages,
			"files":         build.Files,
			"parse_errors":  build.ParseErrors,
			"entries":       build.Entries,
			"ngrams":        build.Ngrams,
			"artifact":      build.ArtifactPath,
			"artifact_size": humanize.Bytes(uint64(build.ArtifactBytes)),
		},
	}
	if build.Error != "" {
		response["error"] = build.Error
	}

	// Verify the artifact on disk still loads
	if build.Status == storage.BuildSucceeded && build.ArtifactPath != "" {
		health := map[string]interface{}{"artifact_loadable": false}
		if artifact, err := searchindex.Load(build.ArtifactPath); err == nil {
			stats := artifact.Stats()
			health["artifact_loadable"] = true
			health["longest_fingerprint"] = stats.LongestPrint
		} else {
			health["artifact_error"] = err.Error()
		}
		response["health"] = health
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// buildError maps indexer failures onto MCP error codes
func buildError(err error, path string) error {
	switch {
	case errors.Is(err, indexer.ErrBuildInProgress):
		return newMCPError(ErrorCodeIndexingInProgress, "a search index build is already running", nil)
	case errors.Is(err, indexer.ErrNoPackages):
		return newMCPError(ErrorCodeProjectNotFound, "no Go packages found", map[string]interface{}{
			"path": path,
		})
	default:
		return newMCPError(ErrorCodeInternalError, "index build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is an absolute, readable directory holding Go files
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".go") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	if !found {
		return ErrNoGoFiles
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation errors
var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoGoFiles       = errors.New("directory does not contain Go files")
)
