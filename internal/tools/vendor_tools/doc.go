// Package vendor_tools provides MCP tools over the Teleperson CRM: the
// vendors a user follows, their transactions and single vendor records.
package vendor_tools
