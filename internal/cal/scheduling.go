package cal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teemow/agentdesk/internal/availability"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// OwnerSchedule is the owner's default schedule and the location its
// wall-clock times are defined in.
type OwnerSchedule struct {
	Profile  *Profile
	Schedule *Schedule
	Location *time.Location
}

// OwnerSchedule fetches the profile, then the default schedule. The
// schedule's own time zone wins over the profile's.
func (c *Client) OwnerSchedule(ctx context.Context) (*OwnerSchedule, error) {
	profile, err := c.Profile(ctx)
	if err != nil {
		return nil, err
	}
	schedule, err := c.Schedule(ctx)
	if err != nil {
		return nil, err
	}

	zone := schedule.TimeZone
	if zone == "" {
		zone = profile.TimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil || zone == "" {
		return nil, &upstream.Error{Service: c.api.Service(), Op: instrumentation.OperationSchedules,
			Err: fmt.Errorf("owner time zone %q is not usable", zone)}
	}

	return &OwnerSchedule{Profile: profile, Schedule: schedule, Location: loc}, nil
}

// DayAvailability is the open window and busy intervals of one date.
type DayAvailability struct {
	Date   string
	Owner  *time.Location
	Viewer *time.Location
	Window *availability.ResolvedWindow
	Busy   []string
}

// CheckAvailability resolves the owner's open hours on date and the busy
// intervals inside that day, both shown in viewer. A nil viewer means the
// owner's zone. A day without a window returns *availability.NotFoundError
// before busy times are requested.
func (c *Client) CheckAvailability(ctx context.Context, date string, viewer *time.Location) (*DayAvailability, error) {
	owner, err := c.OwnerSchedule(ctx)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		viewer = owner.Location
	}

	window, err := availability.ResolveWindow(date, owner.Schedule.Availability, owner.Location, viewer)
	if err != nil {
		return nil, err
	}

	calendar, err := c.PrimaryCalendar(ctx)
	if err != nil {
		return nil, err
	}
	busy, err := c.BusyTimes(ctx, BusyTimesQuery{
		Date:     window.Date,
		TimeZone: owner.Location.String(),
		Calendar: *calendar,
	})
	if err != nil {
		return nil, err
	}

	return &DayAvailability{
		Date:   window.Date,
		Owner:  owner.Location,
		Viewer: viewer,
		Window: window,
		Busy:   availability.FormatBusy(busy, viewer),
	}, nil
}

// Text renders d for the caller.
func (d *DayAvailability) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available hours: %s - %s (%s). ", d.Window.StartTimeLocal, d.Window.EndTimeLocal, d.Viewer)
	if len(d.Busy) == 0 {
		fmt.Fprintf(&b, "User is free all day on %s.", d.Date)
	} else {
		fmt.Fprintf(&b, "The user is busy during these times: %s.", strings.Join(d.Busy, ", "))
	}
	return b.String()
}

// BookingInput is a booking expressed in the attendee's wall clock.
type BookingInput struct {
	Date        string
	StartTime   string
	Location    *time.Location
	Attendee    Attendee
	Summary     string
	EventTypeID int64

	// EnforceWindow rejects start times outside the owner's open hours
	// before anything is submitted.
	EnforceWindow bool
	// IdempotencyKey is sent with the create call.
	IdempotencyKey string
}

// Book creates a booking at Date+StartTime in the attendee's zone. With
// EnforceWindow the start must fall inside the owner's window of the
// owner-local date it lands on: a non-working day yields
// *availability.NotFoundError, a time outside the window a
// *validation.ValidationError.
func (c *Client) Book(ctx context.Context, in BookingInput) (*Booking, error) {
	if in.Location == nil {
		return nil, &validation.ValidationError{Field: "timeZone", Reason: "is required"}
	}
	start, err := availability.ZonedInstant(in.Date, in.StartTime, in.Location)
	if err != nil {
		return nil, err
	}

	if in.EnforceWindow {
		owner, err := c.OwnerSchedule(ctx)
		if err != nil {
			return nil, err
		}
		ownerDate := start.In(owner.Location).Format(validation.DateLayout)
		window, err := availability.ResolveWindow(ownerDate, owner.Schedule.Availability, owner.Location, in.Location)
		if err != nil {
			return nil, err
		}
		if !window.Contains(start) {
			return nil, &validation.ValidationError{
				Field: "startTime",
				Reason: fmt.Sprintf("%s is outside the available hours %s - %s (%s)",
					availability.FormatClock(start, in.Location), window.StartTimeLocal, window.EndTimeLocal, in.Location),
			}
		}
	}

	attendee := in.Attendee
	attendee.TimeZone = in.Location.String()
	return c.CreateBooking(ctx, BookingRequest{
		Start:       start,
		Attendee:    attendee,
		EventTypeID: in.EventTypeID,
		Summary:     in.Summary,
	}, in.IdempotencyKey)
}

// SlotsText renders free slots between two dates in loc, using long dates.
func SlotsText(days []DaySlots, startDate, endDate string, loc *time.Location) string {
	from, to := longDate(startDate), longDate(endDate)

	var lines []string
	for _, day := range days {
		if len(day.Starts) == 0 {
			continue
		}
		times := make([]string, 0, len(day.Starts))
		for _, s := range day.Starts {
			times = append(times, availability.FormatClock(s, loc))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", longDate(day.Date), strings.Join(times, ", ")))
	}

	if len(lines) == 0 {
		return fmt.Sprintf("There are no available time slots between %s - %s", from, to)
	}
	return fmt.Sprintf("Here are the available time slots between %s - %s:\n%s", from, to, strings.Join(lines, "\n"))
}

func longDate(date string) string {
	d, err := time.Parse(validation.DateLayout, date)
	if err != nil {
		return date
	}
	return availability.FormatLongDate(d)
}
