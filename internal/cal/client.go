package cal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/teemow/agentdesk/internal/availability"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/upstream"
	"github.com/teemow/agentdesk/internal/validation"
)

// DefaultBaseURL is the Cal.com v2 API root.
const DefaultBaseURL = "https://api.cal.com/v2"

// Versions pinned per endpoint family.
const (
	versionSchedules  = "2024-06-11"
	versionSlots      = "2024-09-04"
	versionBookings   = "2024-08-13"
	versionEventTypes = "2024-06-14"

	headerAPIVersion = "cal-api-version"
)

// Client talks to Cal.com on behalf of one calendar owner.
type Client struct {
	api *upstream.Client
}

// NewClient returns a client authenticated with apiKey. base carries the
// shared transport settings; an empty BaseURL means DefaultBaseURL.
func NewClient(apiKey string, base upstream.Config) *Client {
	base.Service = instrumentation.ServiceCal
	if base.BaseURL == "" {
		base.BaseURL = DefaultBaseURL
	}
	base.Headers = map[string]string{"Authorization": apiKey}
	return &Client{api: upstream.New(base)}
}

func (c *Client) get(ctx context.Context, op, path, version string, query url.Values, dest any) error {
	req := upstream.Request{Op: op, Method: http.MethodGet, Path: path, Query: query}
	if version != "" {
		req.Header = http.Header{headerAPIVersion: {version}}
	}
	_, err := c.api.Do(ctx, req, dest)
	return err
}

// Profile returns the owner profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var resp envelope[Profile]
	if err := c.get(ctx, instrumentation.OperationProfile, "/me", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Schedule returns the owner's default schedule: the one flagged isDefault,
// else the first one listed.
func (c *Client) Schedule(ctx context.Context) (*Schedule, error) {
	var resp envelope[[]Schedule]
	if err := c.get(ctx, instrumentation.OperationSchedules, "/schedules", versionSchedules, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &upstream.Error{Service: instrumentation.ServiceCal, Op: instrumentation.OperationSchedules,
			Err: fmt.Errorf("no schedules configured")}
	}
	for i := range resp.Data {
		if resp.Data[i].IsDefault {
			return &resp.Data[i], nil
		}
	}
	return &resp.Data[0], nil
}

// PrimaryCalendar returns the primary calendar of the first connected
// calendar integration.
func (c *Client) PrimaryCalendar(ctx context.Context) (*ConnectedCalendar, error) {
	var resp envelope[struct {
		ConnectedCalendars []struct {
			CredentialID int64              `json:"credentialId"`
			Primary      *ConnectedCalendar `json:"primary"`
		} `json:"connectedCalendars"`
	}]
	if err := c.get(ctx, instrumentation.OperationCalendars, "/calendars", "", nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.ConnectedCalendars) == 0 || resp.Data.ConnectedCalendars[0].Primary == nil {
		return nil, &validation.ValidationError{Field: "calendar", Reason: "no connected primary calendar"}
	}
	cal := *resp.Data.ConnectedCalendars[0].Primary
	if cal.CredentialID == 0 {
		cal.CredentialID = resp.Data.ConnectedCalendars[0].CredentialID
	}
	return &cal, nil
}

// BusyTimes returns the busy intervals of q.Calendar on q.Date, where the
// date is read in q.TimeZone.
func (c *Client) BusyTimes(ctx context.Context, q BusyTimesQuery) ([]availability.BusyInterval, error) {
	if q.Calendar.CredentialID == 0 {
		return nil, &validation.ValidationError{Field: "credentialId", Reason: "is required"}
	}
	if q.Calendar.ExternalID == "" {
		return nil, &validation.ValidationError{Field: "externalId", Reason: "is required"}
	}
	if _, err := validation.Date("date", q.Date); err != nil {
		return nil, err
	}

	from, to := availability.DayBounds(q.Date)
	query := url.Values{
		"loggedInUsersTz":                  {q.TimeZone},
		"dateFrom":                         {from},
		"dateTo":                           {to},
		"calendarsToLoad[0][credentialId]": {strconv.FormatInt(q.Calendar.CredentialID, 10)},
		"calendarsToLoad[0][externalId]":   {q.Calendar.ExternalID},
	}

	var resp envelope[[]availability.BusyInterval]
	if err := c.get(ctx, instrumentation.OperationBusyTimes, "/calendars/busy-times", "", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Slots returns the free slots of an event type, grouped by date in
// ascending order.
func (c *Client) Slots(ctx context.Context, q SlotsQuery) ([]DaySlots, error) {
	if q.EventTypeID == 0 {
		return nil, &validation.ValidationError{Field: "eventTypeId", Reason: "is required"}
	}
	query := url.Values{
		"eventTypeId": {strconv.FormatInt(q.EventTypeID, 10)},
		"start":       {q.Start},
		"end":         {q.End},
	}
	if q.TimeZone != "" {
		query.Set("timeZone", q.TimeZone)
	}

	var resp envelope[map[string][]struct {
		Start time.Time `json:"start"`
	}]
	if err := c.get(ctx, instrumentation.OperationSlots, "/slots", versionSlots, query, &resp); err != nil {
		return nil, err
	}

	days := make([]DaySlots, 0, len(resp.Data))
	for date, slots := range resp.Data {
		day := DaySlots{Date: date, Starts: make([]time.Time, 0, len(slots))}
		for _, s := range slots {
			day.Starts = append(day.Starts, s.Start)
		}
		sort.Slice(day.Starts, func(i, j int) bool { return day.Starts[i].Before(day.Starts[j]) })
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// EventTypes lists the owner's event types.
func (c *Client) EventTypes(ctx context.Context) ([]EventType, error) {
	var resp envelope[[]EventType]
	if err := c.get(ctx, instrumentation.OperationEventTypes, "/event-types", versionEventTypes, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Bookings lists bookings matching q.
func (c *Client) Bookings(ctx context.Context, q BookingsQuery) ([]Booking, error) {
	query := url.Values{}
	if q.AttendeeEmail != "" {
		query.Set("attendeeEmail", q.AttendeeEmail)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Take > 0 {
		query.Set("take", strconv.Itoa(q.Take))
	}

	var resp envelope[[]Booking]
	if err := c.get(ctx, instrumentation.OperationBookings, "/bookings", versionBookings, query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateBooking submits a booking exactly once; failures are not retried.
// A non-empty idempotencyKey is sent as the Idempotency-Key header.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest, idempotencyKey string) (*Booking, error) {
	if req.EventTypeID == 0 {
		return nil, &validation.ValidationError{Field: "eventTypeId", Reason: "is required"}
	}
	if req.Start.IsZero() {
		return nil, &validation.ValidationError{Field: "start", Reason: "is required"}
	}

	payload := map[string]any{
		"start":       req.Start.UTC().Format(time.RFC3339),
		"eventTypeId": req.EventTypeID,
		"attendee":    req.Attendee,
	}
	if req.Summary != "" {
		payload["metadata"] = map[string]string{"summary": req.Summary}
	}

	header := http.Header{headerAPIVersion: {versionBookings}}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	var resp envelope[Booking]
	if _, err := c.api.Do(ctx, upstream.Request{
		Op:     instrumentation.OperationCreate,
		Method: http.MethodPost,
		Path:   "/bookings",
		Header: header,
		Body:   payload,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
