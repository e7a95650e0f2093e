// Package server exposes the vote card pipeline as an MCP (Model Context
// Protocol) tool server.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line on stdin
// and one response per line on stdout. Logging goes to stderr.
//
// Supported MCP methods:
//   - initialize: protocol handshake
//   - tools/list: enumerate the tools below
//   - tools/call: execute a tool
//   - ping: health check
//
// Tools:
//   - votecards_dimensions: width and height of an image
//   - votecards_ocr: recognized tokens, lines and paragraphs
//   - votecards_classify: regions with their roles, optionally with crop
//     previews
//   - votecards_annotate: the chart with classified regions outlined
//   - votecards_generate: render the title, pros/cons and visual cards and
//     write them to a directory
//   - votecards_ocr_info: OCR backend availability
//
// Loaded images are cached by path for the lifetime of the process.
//
// Tool failures are JSON-RPC errors with code -32000 and the Go error string
// as data.
package server
