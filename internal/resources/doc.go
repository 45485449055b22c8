// Package resources provides MCP resources exposing the calendar owner's
// account: profile, default schedule and event types. Resources are
// read-only JSON documents that MCP clients can fetch for context before
// calling the booking tools.
package resources
