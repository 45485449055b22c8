// Package website_tools provides the MCP tool that reads a caller's
// company homepage so the conversation can be personalised.
package website_tools
