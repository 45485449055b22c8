package calendar_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/tools/common"
	"github.com/teemow/agentdesk/internal/validation"
)

// RegisterSchedulingTools registers the availability and slot tools.
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkAvailabilityTool := mcp.NewTool("calendar_check_availability",
		mcp.WithDescription("Check the calendar owner's available hours and busy times on a specific date"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The date to check availability for (YYYY-MM-DD format)"),
		),
		mcp.WithString("timeZone",
			mcp.Description("The caller's IANA time zone, e.g. 'America/Chicago' (default: the owner's time zone)"),
		),
	)

	s.AddTool(checkAvailabilityTool, common.InstrumentedToolHandlerWithService("calendar_check_availability",
		instrumentation.ServiceCal, instrumentation.OperationBusyTimes, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckAvailability(ctx, request, sc)
		}))

	findSlotsTool := mcp.NewTool("calendar_find_slots",
		mcp.WithDescription("Fetch the available time slots in the owner's calendar between two dates"),
		mcp.WithString("startDate",
			mcp.Required(),
			mcp.Description("Start date (YYYY-MM-DD) to check for available slots, inclusive"),
		),
		mcp.WithString("endDate",
			mcp.Description("End date (YYYY-MM-DD), inclusive (default: startDate)"),
		),
		mcp.WithString("timeZone",
			mcp.Required(),
			mcp.Description("The caller's IANA time zone, e.g. 'America/Denver'"),
		),
	)

	s.AddTool(findSlotsTool, common.InstrumentedToolHandlerWithService("calendar_find_slots",
		instrumentation.ServiceCal, instrumentation.OperationSlots, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindSlots(ctx, request, sc)
		}))

	return nil
}

func handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "checking availability"
	args := request.GetArguments()

	date, err := validation.Date("date", common.StringArg(args, "date"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	// A nil viewer shows the owner's zone.
	var viewer *time.Location
	if tz := common.StringArg(args, "timeZone"); tz != "" {
		if viewer, err = validation.TimeZone("timeZone", tz); err != nil {
			return common.ErrorResult(ctx, action, err), nil
		}
	}

	client, err := getCalClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	day, err := client.CheckAvailability(ctx, date, viewer)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	return mcp.NewToolResultText(day.Text()), nil
}

func handleFindSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "finding slots"
	args := request.GetArguments()

	startDate, err := validation.Date("startDate", common.StringArg(args, "startDate"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	endDate := startDate
	if v := common.StringArg(args, "endDate"); v != "" {
		if endDate, err = validation.Date("endDate", v); err != nil {
			return common.ErrorResult(ctx, action, err), nil
		}
	}
	if endDate < startDate {
		return common.ErrorResult(ctx, action, &validation.ValidationError{Field: "endDate", Reason: "is before startDate"}), nil
	}
	loc, err := validation.TimeZone("timeZone", common.StringArg(args, "timeZone"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	client, err := getCalClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	days, err := client.Slots(ctx, cal.SlotsQuery{
		EventTypeID: sc.EventTypeID(),
		Start:       startDate,
		End:         endDate,
		TimeZone:    loc.String(),
	})
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	return mcp.NewToolResultText(cal.SlotsText(days, startDate, endDate, loc)), nil
}
