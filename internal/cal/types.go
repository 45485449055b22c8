package cal

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/agentdesk/internal/availability"
)

// Bookable event types. Which one a server books is decided by its
// configuration, never by the caller.
const (
	EventTypeDiscovery int64 = 2485287
	EventTypeSales     int64 = 2512300
)

// Profile is the calendar owner (GET /me).
type Profile struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	TimeZone          string `json:"timeZone"`
	DefaultScheduleID int64  `json:"defaultScheduleId"`
	WeekStart         string `json:"weekStart"`
}

// Schedule is a weekly availability table with its own time zone.
type Schedule struct {
	ID           int64                           `json:"id"`
	Name         string                          `json:"name"`
	TimeZone     string                          `json:"timeZone"`
	IsDefault    bool                            `json:"isDefault"`
	Availability availability.WeeklyAvailability `json:"availability"`
}

// ConnectedCalendar identifies the calendar busy times are read from.
type ConnectedCalendar struct {
	CredentialID int64  `json:"credentialId"`
	ExternalID   string `json:"externalId"`
}

// BusyTimesQuery asks for the busy intervals of one owner-local date.
type BusyTimesQuery struct {
	Date     string
	TimeZone string
	Calendar ConnectedCalendar
}

// SlotsQuery asks for bookable slots of an event type between two dates.
type SlotsQuery struct {
	EventTypeID int64
	Start       string
	End         string
	TimeZone    string
}

// DaySlots lists the start times of the free slots of one date.
type DaySlots struct {
	Date   string
	Starts []time.Time
}

// EventType is a bookable meeting template.
type EventType struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	LengthInMinutes int    `json:"lengthInMinutes"`
	Description     string `json:"description,omitempty"`
}

// Attendee is the person a booking is made for.
type Attendee struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"timeZone"`
}

// BookingRequest is the input of CreateBooking.
type BookingRequest struct {
	Start       time.Time
	Attendee    Attendee
	EventTypeID int64
	Summary     string
}

// Booking is a created or listed booking.
type Booking struct {
	ID          int64      `json:"id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	EventTypeID int64      `json:"eventTypeId"`
	Attendees   []Attendee `json:"attendees"`
}

// BookingsQuery filters the booking list.
type BookingsQuery struct {
	AttendeeEmail string
	Status        string
	Take          int
}

// envelope is the {"status": ..., "data": ...} wrapper of every v2 response.
type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

// ParseEventType maps an event type name to its id.
func ParseEventType(name string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "discovery":
		return EventTypeDiscovery, nil
	case "sales":
		return EventTypeSales, nil
	default:
		return 0, fmt.Errorf("unknown event type %q (want discovery or sales)", name)
	}
}
