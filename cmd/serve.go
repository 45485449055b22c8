package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/config"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/logging"
	"github.com/teemow/agentdesk/internal/resources"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/tools/calendar_tools"
	"github.com/teemow/agentdesk/internal/tools/knowledge_tools"
	"github.com/teemow/agentdesk/internal/tools/vendor_tools"
	"github.com/teemow/agentdesk/internal/tools/website_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	transport string
	httpAddr  string
	toolsets  string
	eventType string
	readOnly  bool
	debug     bool
	metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server that gives AI agents
scheduling, vendor, website and knowledge tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - sse: Server-Sent Events (/sse and /message)
  - streamable-http: Streamable HTTP transport (/mcp)

Toolsets:
  --toolsets selects which groups of tools to register (booking, vendor,
  website, knowledge). Every enabled toolset needs its credentials:
    booking:   CAL_API_KEY
    vendor:    TELEPERSON_API_KEY
    website:   JINA_API_KEY (optional)
    knowledge: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY, or KNOWLEDGE_DATABASE_URL

Settings are read from the environment after loading an optional .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyMetricsEnv(cmd, &opts.metrics)
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&opts.transport, "transport", server.TransportStdio, "Transport type: stdio, sse or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for sse and streamable-http). Defaults to the PORT env var when not set.")
	cmd.Flags().StringVar(&opts.toolsets, "toolsets", "all", "Comma-separated toolsets to enable: booking, vendor, website, knowledge")
	cmd.Flags().StringVar(&opts.eventType, "event-type", "discovery", "Event type bookings are created for: discovery or sales")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Do not register tools that create bookings")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyMetricsEnv lets METRICS_ENABLED and METRICS_ADDR override flags the
// user did not set explicitly.
func applyMetricsEnv(cmd *cobra.Command, metrics *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				metrics.Enabled = enabled
			}
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metrics.Addr = addr
		}
	}
}

// resolveHTTPAddr prefers an explicit --http-addr over the configured PORT.
func resolveHTTPAddr(flagAddr string, flagChanged bool, port int) string {
	if flagChanged || port <= 0 {
		return flagAddr
	}
	return fmt.Sprintf(":%d", port)
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch opts.transport {
	case server.TransportStdio, server.TransportSSE, server.TransportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", opts.transport)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}

	// Stdout carries the stdio transport, so logs always go to stderr.
	logger, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	toolsets, err := server.ParseToolsets(opts.toolsets)
	if err != nil {
		return err
	}
	eventTypeID, err := cal.ParseEventType(opts.eventType)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if opts.transport != server.TransportStdio && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(opts.metrics, provider, logger)
		if err != nil {
			return err
		}
	}

	serverContext := server.NewServerContext(shutdownCtx, logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	serverContext.SetEventTypeID(eventTypeID)
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	if err := serverContext.Connect(shutdownCtx, cfg, toolsets); err != nil {
		return fmt.Errorf("failed to connect upstream clients: %w", err)
	}

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, serverContext, toolsets, opts.readOnly); err != nil {
		return err
	}

	logger.Info("starting agentdesk",
		"version", version,
		"transport", opts.transport,
		"toolsets", toolsets,
		"event_type_id", eventTypeID,
		"read_only", opts.readOnly)

	if opts.transport == server.TransportStdio {
		return runStdioServer(mcpSrv)
	}
	addr := resolveHTTPAddr(opts.httpAddr, cmd.Flags().Changed("http-addr"), cfg.Port)
	return runHTTPServer(shutdownCtx, mcpSrv, serverContext, opts.transport, addr, logger)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("agentdesk", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
}

func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers the tools of every enabled toolset. The
// calendar resources come with the booking toolset.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, toolsets []server.Toolset, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := map[server.Toolset][]toolRegistration{
		server.ToolsetBooking: {
			{
				name: "Calendar",
				register: func() error {
					return calendar_tools.RegisterCalendarTools(mcpSrv, sc, readOnly)
				},
			},
			{
				name: "Calendar Resources",
				register: func() error {
					return resources.RegisterCalendarResources(mcpSrv, sc)
				},
			},
		},
		server.ToolsetVendor: {
			{
				name: "Vendor",
				register: func() error {
					return vendor_tools.RegisterVendorTools(mcpSrv, sc)
				},
			},
		},
		server.ToolsetWebsite: {
			{
				name: "Website",
				register: func() error {
					return website_tools.RegisterWebsiteTools(mcpSrv, sc)
				},
			},
		},
		server.ToolsetKnowledge: {
			{
				name: "Knowledge",
				register: func() error {
					return knowledge_tools.RegisterKnowledgeTools(mcpSrv, sc)
				},
			},
		},
	}

	for _, ts := range toolsets {
		for _, reg := range registrations[ts] {
			if err := reg.register(); err != nil {
				return fmt.Errorf("failed to register %s: %w", reg.name, err)
			}
		}
	}

	return nil
}

func runHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, transport, addr string, logger *slog.Logger) error {
	httpServer, err := server.NewHTTPServer(mcpSrv, transport, sc)
	if err != nil {
		return err
	}

	switch transport {
	case server.TransportSSE:
		logger.Info("HTTP server starting", "addr", addr, "sse_endpoint", "/sse", "message_endpoint", "/message")
	default:
		logger.Info("HTTP server starting", "addr", addr, "endpoint", "/mcp")
	}

	ready := make(chan struct{})
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.StartWithReadySignal(addr, ready); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ready:
		logger.Info("HTTP server listening", "addr", httpServer.Addr())
	case err := <-serverDone:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped normally")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
