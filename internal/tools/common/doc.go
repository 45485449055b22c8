// Package common provides shared utilities for MCP tool implementations:
// argument helpers, the mapping of domain errors to tool results and the
// instrumentation wrapper every handler is registered with.
package common
