// Package availability turns a weekly recurring schedule into the open hours
// of one calendar date, shown in the viewer's time zone.
//
// Schedule times are owner-local wall-clock strings ("09:00"). They are
// combined with the date inside the owner's location, so the result does
// not depend on the zone of the machine running the server. Busy intervals
// reported by the calendar provider are rendered the same way.
//
//	window, err := availability.ResolveWindow("2025-05-29", schedule, denver, chicago)
//	var nf *availability.NotFoundError
//	if errors.As(err, &nf) {
//		// not a working day
//	}
package availability
