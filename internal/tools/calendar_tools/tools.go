package calendar_tools

import (
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/server"
)

var errNotConfigured = errors.New("the booking toolset is not configured")

// getCalClient returns the configured Cal.com client.
func getCalClient(sc *server.ServerContext) (*cal.Client, error) {
	client := sc.CalClient()
	if client == nil {
		return nil, errNotConfigured
	}
	return client, nil
}

// RegisterCalendarTools registers all calendar tools with the MCP server.
// With readOnly, calendar_create_booking is not registered.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	if err := RegisterBookingTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register booking tools: %w", err)
	}

	return nil
}
