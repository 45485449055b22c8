package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/server"
)

const mimeJSON = "application/json"

var errNotConfigured = errors.New("the booking toolset is not configured")

// RegisterCalendarResources registers the calendar owner resources.
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	profileResource := mcp.NewResource(
		"calendar://profile",
		"Calendar Owner Profile",
		mcp.WithResourceDescription("The Cal.com profile of the calendar owner, including the time zone"),
		mcp.WithMIMEType(mimeJSON),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	})

	scheduleResource := mcp.NewResource(
		"calendar://schedule",
		"Calendar Owner Schedule",
		mcp.WithResourceDescription("The owner's default weekly availability and its time zone"),
		mcp.WithMIMEType(mimeJSON),
	)

	s.AddResource(scheduleResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSchedule(ctx, request, sc)
	})

	eventTypesResource := mcp.NewResource(
		"calendar://event-types",
		"Event Types",
		mcp.WithResourceDescription("The owner's bookable event types and the one this server books"),
		mcp.WithMIMEType(mimeJSON),
	)

	s.AddResource(eventTypesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleEventTypes(ctx, request, sc)
	})

	return nil
}

func calClient(sc *server.ServerContext) (*cal.Client, error) {
	client := sc.CalClient()
	if client == nil {
		return nil, errNotConfigured
	}
	return client, nil
}

func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := calClient(sc)
	if err != nil {
		return nil, err
	}

	profile, err := client.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar profile: %w", err)
	}
	return jsonContents(request.Params.URI, profile)
}

func handleSchedule(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := calClient(sc)
	if err != nil {
		return nil, err
	}

	schedule, err := client.Schedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return jsonContents(request.Params.URI, schedule)
}

func handleEventTypes(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := calClient(sc)
	if err != nil {
		return nil, err
	}

	eventTypes, err := client.EventTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get event types: %w", err)
	}

	return jsonContents(request.Params.URI, map[string]interface{}{
		"bookedEventTypeId": sc.EventTypeID(),
		"eventTypes":        eventTypes,
	})
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(jsonData),
		},
	}, nil
}
