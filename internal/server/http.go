package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Transport names accepted by serve.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// DefaultHTTPAddr is the listen address of the HTTP transports.
const DefaultHTTPAddr = ":3001"

// HTTPServer exposes an MCP server over SSE or streamable HTTP, next to
// the health endpoints.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	health        *HealthChecker
	transport     string
	httpServer    *http.Server
	addr          string
}

// NewHTTPServer validates transport and prepares the server. sc may be
// nil in tests.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, transport string, sc *ServerContext) (*HTTPServer, error) {
	switch transport {
	case TransportSSE, TransportStreamableHTTP:
	default:
		return nil, fmt.Errorf("unsupported HTTP transport: %s (supported: sse, streamable-http)", transport)
	}
	return &HTTPServer{
		mcpServer:     mcpServer,
		serverContext: sc,
		health:        NewHealthChecker(sc),
		transport:     transport,
	}, nil
}

// Health returns the server's health checker.
func (s *HTTPServer) Health() *HealthChecker {
	return s.health
}

// Handler returns the routed handler: MCP endpoints for the transport,
// health endpoints, and request metrics around all of them.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.health.RegisterHealthEndpoints(mux)

	switch s.transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", sseServer)
		mux.Handle("/message", sseServer)

	case TransportStreamableHTTP:
		streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", streamable)
	}

	return s.requestMetrics(mux)
}

// Start serves on addr until Shutdown.
func (s *HTTPServer) Start(addr string) error {
	return s.StartWithReadySignal(addr, nil)
}

// StartWithReadySignal binds addr, closes ready (when non-nil) and serves
// until Shutdown.
func (s *HTTPServer) StartWithReadySignal(addr string, ready chan<- struct{}) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: SSE streams stay open.
		IdleTimeout: 120 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.addr = ln.Addr().String()

	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(ln)
}

// Addr returns the bound address once the server started.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Shutdown marks the server not ready and drains connections.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestMetrics records http_requests_total and the request duration.
// Paths outside the known routes are recorded as "other".
func (s *HTTPServer) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if s.serverContext != nil {
			s.serverContext.Metrics().RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
		}
	})
}

func routeLabel(path string) string {
	switch path {
	case "/sse", "/message", "/mcp", "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return "other"
	}
}

// statusRecorder captures the response status. It forwards Flush so SSE
// streams keep working through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
