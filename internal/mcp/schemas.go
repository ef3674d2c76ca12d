package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// buildSearchIndexTool returns the tool definition for build_search_index
func buildSearchIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_search_index",
		Description: "Build the documentation search index (search_index.js) for a Go module",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the Go module root (must contain .go files)",
				},
				"output": map[string]interface{}{
					"type":        "string",
					"description": "Artifact path. Relative paths resolve against the module root.",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "js wraps the index in a script assignment; json writes the bare document. Defaults by output extension.",
					"enum":        []string{"js", "json"},
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index *_test.go files",
				},
				"include_vendor": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index vendor/ directory",
					"default":     false,
				},
				"snippet_limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum visible characters in description snippets",
					"minimum":     10,
				},
			},
			Required: []string{"path"},
		},
	}
}

// indexStatusTool returns the tool definition for index_status
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Report the outcome and statistics of the most recent search index build",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
