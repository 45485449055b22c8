package calendar_tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentdesk/internal/availability"
	"github.com/teemow/agentdesk/internal/cal"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/logging"
	"github.com/teemow/agentdesk/internal/server"
	"github.com/teemow/agentdesk/internal/tools/common"
	"github.com/teemow/agentdesk/internal/validation"
)

// maxListedBookings caps calendar_list_bookings.
const maxListedBookings = 10

// RegisterBookingTools registers the booking tools. calendar_create_booking
// is left out in read-only mode.
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listBookingsTool := mcp.NewTool("calendar_list_bookings",
		mcp.WithDescription("List the upcoming and past bookings of an attendee"),
		mcp.WithString("attendeeEmail",
			mcp.Required(),
			mcp.Description("Email of the attendee"),
		),
	)

	s.AddTool(listBookingsTool, common.InstrumentedToolHandlerWithService("calendar_list_bookings",
		instrumentation.ServiceCal, instrumentation.OperationBookings, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListBookings(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createBookingTool := mcp.NewTool("calendar_create_booking",
		mcp.WithDescription("Create a booking at a specific date and time"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The date for the booking (YYYY-MM-DD format)"),
		),
		mcp.WithString("startTime",
			mcp.Required(),
			mcp.Description("The start time for the booking (HH:MM format) - MM needs to be 00 or 30"),
		),
		mcp.WithString("timeZone",
			mcp.Required(),
			mcp.Description("The time zone of date and startTime (e.g., 'America/Denver')"),
		),
		mcp.WithString("attendeeName",
			mcp.Required(),
			mcp.Description("Name of the attendee"),
		),
		mcp.WithString("attendeeEmail",
			mcp.Required(),
			mcp.Description("Email of the attendee"),
		),
		mcp.WithString("summary",
			mcp.Description("Optional: Summary of the meeting"),
		),
	)

	s.AddTool(createBookingTool, common.InstrumentedToolHandlerWithService("calendar_create_booking",
		instrumentation.ServiceCal, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateBooking(ctx, request, sc)
		}))

	return nil
}

func handleCreateBooking(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "creating booking"
	args := request.GetArguments()

	date, err := validation.Date("date", common.StringArg(args, "date"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	startTime, err := validation.Clock("startTime", common.StringArg(args, "startTime"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	loc, err := validation.TimeZone("timeZone", common.StringArg(args, "timeZone"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	name, err := validation.Required("attendeeName", common.StringArg(args, "attendeeName"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}
	email, err := validation.Email("attendeeEmail", common.StringArg(args, "attendeeEmail"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	client, err := getCalClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	booking, err := client.Book(ctx, cal.BookingInput{
		Date:           date,
		StartTime:      startTime,
		Location:       loc,
		Attendee:       cal.Attendee{Name: name, Email: email},
		Summary:        common.StringArg(args, "summary"),
		EventTypeID:    sc.EventTypeID(),
		EnforceWindow:  true,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	logging.WithTool(sc.Logger(), "calendar_create_booking").Info("booking created",
		slog.String("uid", booking.UID),
		slog.Int64("event_type", sc.EventTypeID()),
		logging.Domain(email))

	return mcp.NewToolResultText(fmt.Sprintf("Booking created successfully for %s on %s at %s.", name, date, startTime)), nil
}

func handleListBookings(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	const action = "listing bookings"
	args := request.GetArguments()

	email, err := validation.Email("attendeeEmail", common.StringArg(args, "attendeeEmail"))
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	client, err := getCalClient(sc)
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	bookings, err := client.Bookings(ctx, cal.BookingsQuery{AttendeeEmail: email, Take: maxListedBookings})
	if err != nil {
		return common.ErrorResult(ctx, action, err), nil
	}

	if len(bookings) == 0 {
		common.MarkNotFound(ctx)
		return mcp.NewToolResultText(fmt.Sprintf("No bookings found for %s.", email)), nil
	}

	return mcp.NewToolResultText(formatBookings(email, bookings)), nil
}

// formatBookings lists bookings in the attendee's own time zone, UTC when
// the booking does not name it.
func formatBookings(email string, bookings []cal.Booking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d booking(s) for %s:\n", len(bookings), email)
	for i, booking := range bookings {
		loc := attendeeLocation(booking, email)
		start := booking.Start.In(loc)
		title := booking.Title
		if title == "" {
			title = "Meeting"
		}
		fmt.Fprintf(&b, "%d. %s on %s at %s (%s), status: %s\n",
			i+1, title,
			availability.FormatLongDate(start),
			availability.FormatClock(booking.Start, loc),
			loc, booking.Status)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func attendeeLocation(booking cal.Booking, email string) *time.Location {
	for _, a := range booking.Attendees {
		if !strings.EqualFold(a.Email, email) || a.TimeZone == "" {
			continue
		}
		if loc, err := time.LoadLocation(a.TimeZone); err == nil {
			return loc
		}
	}
	return time.UTC
}
