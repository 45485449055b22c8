package availability

import (
	"fmt"
	"time"
)

// DayWindow is one recurring open-hours entry.
type DayWindow struct {
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
}

// WeeklyAvailability is an ordered list of DayWindows. For a weekday the
// first matching entry applies.
type WeeklyAvailability []DayWindow

// ResolvedWindow is the open-hours window of one date.
type ResolvedWindow struct {
	Date string

	// Owner-local wall-clock strings as they appear in the schedule.
	StartTime string
	EndTime   string

	// Viewer-local 12-hour clock strings, e.g. "9:00 AM".
	StartTimeLocal string
	EndTimeLocal   string

	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within [Start, End).
func (w *ResolvedWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// BusyInterval is an existing calendar event.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NotFoundError means the schedule has no window on Weekday.
type NotFoundError struct {
	Weekday string
	Date    string
}

func (e *NotFoundError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("no availability window found for %s (%s)", e.Weekday, e.Date)
	}
	return fmt.Sprintf("no availability window found for %s", e.Weekday)
}
