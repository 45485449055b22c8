// Package batch runs a tool operation over several ids and reports the
// outcome of each one.
//
// This package includes helpers for:
//   - Parsing parameters that accept a single id, a list, or a JSON array string
//   - Running the operation with bounded concurrency, keeping input order
//   - Formatting partial failures in a consistent JSON structure
package batch
