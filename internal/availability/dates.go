package availability

import (
	"fmt"
	"time"
)

// FormatLongDate renders d like "Thursday, May 29th, 2025".
func FormatLongDate(d time.Time) string {
	return fmt.Sprintf("%s, %s %d%s, %d", d.Weekday(), d.Month(), d.Day(), ordinalSuffix(d.Day()), d.Year())
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
