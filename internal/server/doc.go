// Package server implements the MCP (Model Context Protocol) server that
// exposes the object-graph pipeline as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: stderr, never stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_evict: Drop one cached image, or the whole cache
//
// Segmentation:
//   - image_binarize: Threshold mask, foreground and contour counts
//
// Graphs:
//   - graph_components: Component centroids, boxes and proximity graph
//   - graph_objects: Clusters, object graph, object boxes and count
//   - graph_render: Overlay of both graphs as PNG
//   - object_crop: One object cut out of the image as PNG
//
// Every graph tool accepts per-call overrides of the configured threshold,
// blur sigma, radii and degenerate-contour policy.
//
// # Error Codes
//
//   - -32700: Parse error (malformed JSON line)
//   - -32601: Method not found
//   - -32602: Invalid params (malformed tools/call envelope)
//   - -32000: Tool execution failed (bad arguments, unreadable image,
//     zero-area contour, invalid radius); data holds the error text
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, so
// repeated tool calls on the same image skip disk I/O and decoding.
package server
