// Package server provides the MCP server context and the HTTP transports
// for agentdesk.
//
// # Key Components
//
// ServerContext owns the upstream clients the enabled toolsets need. It is
// filled by Connect from the loaded configuration:
//   - booking: the Cal.com client and the event type bookings are made for
//   - vendor: the Teleperson CRM client and its service username
//   - website: the website reader
//   - knowledge: the knowledge service with its embedder, searcher and extractor
//
// HTTPServer exposes the MCP server over SSE (/sse, /message) or
// streamable HTTP (/mcp), next to the Kubernetes health endpoints
// (/healthz, /readyz, /healthz/detailed). Readiness includes the
// dependency checks registered on the ServerContext.
//
// MetricsServer serves the Prometheus /metrics endpoint on its own address.
package server
