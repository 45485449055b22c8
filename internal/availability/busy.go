package availability

import "time"

// FormatBusy renders each interval as "<start> - <end>" in viewer and drops
// repeated strings. Two different events that render identically collapse
// into one entry. First occurrences keep their order.
func FormatBusy(intervals []BusyInterval, viewer *time.Location) []string {
	seen := make(map[string]struct{}, len(intervals))
	out := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		s := FormatClock(iv.Start, viewer) + " - " + FormatClock(iv.End, viewer)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
