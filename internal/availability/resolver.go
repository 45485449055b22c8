package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/agentdesk/internal/validation"
)

// ClockFormat is the 12-hour display layout.
const ClockFormat = "3:04 PM"

// ResolveWindow returns the open hours of date according to availability.
// The schedule's wall-clock times are interpreted in owner and formatted in
// viewer. A date whose weekday has no entry yields a *NotFoundError.
func ResolveWindow(date string, availability WeeklyAvailability, owner, viewer *time.Location) (*ResolvedWindow, error) {
	if owner == nil || viewer == nil {
		return nil, &validation.ValidationError{Field: "timeZone", Reason: "owner and viewer locations are required"}
	}

	day, err := time.Parse(validation.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return nil, &validation.ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD date", date)}
	}
	date = day.Format(validation.DateLayout)

	weekday := day.Weekday().String()
	entry, ok := availability.lookup(weekday)
	if !ok {
		return nil, &NotFoundError{Weekday: weekday, Date: date}
	}

	start, err := ZonedInstant(date, entry.StartTime, owner)
	if err != nil {
		return nil, err
	}
	end, err := ZonedInstant(date, entry.EndTime, owner)
	if err != nil {
		return nil, err
	}

	return &ResolvedWindow{
		Date:           date,
		StartTime:      strings.TrimSpace(entry.StartTime),
		EndTime:        strings.TrimSpace(entry.EndTime),
		StartTimeLocal: FormatClock(start, viewer),
		EndTimeLocal:   FormatClock(end, viewer),
		Start:          start,
		End:            end,
	}, nil
}

// lookup returns the first entry listing weekday. Day names compare
// case-insensitively.
func (a WeeklyAvailability) lookup(weekday string) (DayWindow, bool) {
	for _, entry := range a {
		for _, d := range entry.Days {
			if strings.EqualFold(strings.TrimSpace(d), weekday) {
				return entry, true
			}
		}
	}
	return DayWindow{}, false
}

// ZonedInstant builds the instant at which the wall clock in loc shows
// date and clock ("HH:MM"). A time repeated by a DST fall-back resolves
// to its first occurrence. A time skipped by a spring-forward gap is read
// with the offset in force before the gap, so 02:30 on a 02:00 to 03:00
// jump lands on 03:30.
func ZonedInstant(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := validation.Date("date", date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := validation.Clock("time", clock)
	if err != nil {
		return time.Time{}, err
	}

	day, _ := time.Parse(validation.DateLayout, d)
	hm, _ := time.Parse(validation.ClockLayout, c)
	wall := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.UTC)

	// Transitions are far more than a day apart, so noon on the previous
	// and next day carry the offsets either side of one.
	_, before := time.Date(day.Year(), day.Month(), day.Day()-1, 12, 0, 0, 0, loc).Zone()
	_, after := time.Date(day.Year(), day.Month(), day.Day()+1, 12, 0, 0, 0, loc).Zone()

	early := wall.Add(-time.Duration(before) * time.Second).In(loc)
	if showsWall(early, wall) {
		return early, nil
	}
	late := wall.Add(-time.Duration(after) * time.Second).In(loc)
	if showsWall(late, wall) {
		return late, nil
	}
	return early, nil
}

// showsWall reports whether t reads as wall's date and clock in t's zone.
func showsWall(t, wall time.Time) bool {
	y, m, d := t.Date()
	wy, wm, wd := wall.Date()
	return y == wy && m == wm && d == wd && t.Hour() == wall.Hour() && t.Minute() == wall.Minute()
}

// DayBounds returns the first and last second of date as owner-local
// "YYYY-MM-DDTHH:MM:SS" strings, the form the busy-times query expects.
func DayBounds(date string) (from, to string) {
	return date + "T00:00:00", date + "T23:59:59"
}

// FormatClock renders t as a 12-hour clock time in loc.
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(ClockFormat)
}
