package availability

import (
	"reflect"
	"testing"
	"time"
)

func TestFormatBusy(t *testing.T) {
	denver := mustLoad(t, "America/Denver")
	chicago := mustLoad(t, "America/Chicago")
	at := func(loc *time.Location, h, m int) time.Time {
		return time.Date(2025, 5, 29, h, m, 0, 0, loc)
	}

	tests := []struct {
		name      string
		intervals []BusyInterval
		viewer    *time.Location
		want      []string
	}{
		{
			name: "two meetings",
			intervals: []BusyInterval{
				{Start: at(denver, 9, 0), End: at(denver, 9, 30)},
				{Start: at(denver, 12, 0), End: at(denver, 13, 0)},
			},
			viewer: denver,
			want:   []string{"9:00 AM - 9:30 AM", "12:00 PM - 1:00 PM"},
		},
		{
			name: "identical renderings collapse",
			intervals: []BusyInterval{
				{Start: at(denver, 9, 0), End: at(denver, 9, 30)},
				{Start: at(denver, 12, 0), End: at(denver, 13, 0)},
				{Start: at(chicago, 10, 0), End: at(chicago, 10, 30)}, // same instants as the first
				{Start: at(denver, 9, 0).Add(20 * time.Second), End: at(denver, 9, 30)},
			},
			viewer: denver,
			want:   []string{"9:00 AM - 9:30 AM", "12:00 PM - 1:00 PM"},
		},
		{
			name: "rendered in viewer zone",
			intervals: []BusyInterval{
				{Start: at(time.UTC, 15, 0), End: at(time.UTC, 15, 30)},
			},
			viewer: chicago,
			want:   []string{"10:00 AM - 10:30 AM"},
		},
		{
			name:   "no intervals",
			viewer: denver,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBusy(tt.intervals, tt.viewer)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FormatBusy() = %v, want %v", got, tt.want)
			}
		})
	}
}
