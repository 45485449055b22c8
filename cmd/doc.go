// Package cmd implements the command-line interface for agentdesk.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio, SSE or streamable HTTP
//   - check-availability: Print the owner's availability for one date
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
