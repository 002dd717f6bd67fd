// Package server implements the MCP (Model Context Protocol) server for image scopes.
//
// This package provides a JSON-RPC 2.0 server that exposes histogram, waveform
// and vectorscope analysis of image files through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, through the configured slog handler
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_pixel: Read pixels as RGBA, HSL, XYZ, u*v* and AzBz
//
// Scopes:
//   - scope_compute: Load an image as the active frame and compute the selected scope
//   - scope_state: Report the selectors and a summary of the current output
//   - scope_set: Change scope, view, channels or channel map
//   - scope_cycle_mode: Step through the six scope modes
//   - scope_clear: Drop all scope data and the active frame
//   - scope_export: Render the current output to PNG, WebP or JPEG
//   - scope_batch_export: Export one scope image per file using a worker pool
//
// # Active Frame
//
// scope_compute keeps the decoded, preview-sized frame with its region of
// interest. scope_set and scope_cycle_mode recompute over it, so a client can
// flip between scopes without reloading the file.
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls for the
// lifetime of the server process.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments, -32000 for tool execution failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
