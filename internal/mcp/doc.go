// Package mcp exposes index builds over the Model Context Protocol (MCP).
//
// Two tools are registered:
//   - build_search_index: build search_index.js (or .json) for a Go module
//   - index_status: report the outcome of the most recent build
//
// Queries are never executed server-side. The artifact is consumed by a
// browser page or by the CLI search and browse commands.
//
// # Protocol Overview
//
// MCP is JSON-RPC 2.0 over stdio:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Logs go to stderr so they never interleave with protocol messages.
//
// # Tool: build_search_index
//
//	Request:
//	{
//	  "name": "build_search_index",
//	  "arguments": {
//	    "path": "/path/to/module",
//	    "output": "doc/js/search_index.js",
//	    "include_tests": false
//	  }
//	}
//
//	Response:
//	{
//	  "built": true,
//	  "build_id": "0b9f6c1e-...",
//	  "module": "example.com/shop",
//	  "packages": 12,
//	  "entries": 843,
//	  "ngrams": 2210,
//	  "artifact": "/path/to/module/doc/js/search_index.js",
//	  "artifact_size": "96 kB",
//	  "duration_ms": 412
//	}
//
// # Tool: index_status
//
// Takes no arguments. Reports whether a build is running, the last build
// record from the catalog, and whether its artifact still loads.
//
// # Error Handling
//
// Handlers return *MCPError with a JSON-RPC code:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  no Go packages under path
//	-32002  a build is already running
package mcp
