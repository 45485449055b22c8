package instrumentation

import "strings"

// ExtractUserDomain reduces an email to its domain for metric labels and
// non-PII logs. Anything without a domain maps to "unknown".
//
//	ExtractUserDomain("jane@Example.com") // "example.com"
//	ExtractUserDomain("invalid")          // "unknown"
func ExtractUserDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return "unknown"
	}
	return strings.ToLower(email[i+1:])
}

// Upstream operation names used for metrics and span names.
const (
	OperationLogin        = "login"
	OperationProfile      = "profile"
	OperationSchedules    = "schedules"
	OperationCalendars    = "calendars"
	OperationBusyTimes    = "busy_times"
	OperationSlots        = "slots"
	OperationEventTypes   = "event_types"
	OperationBookings     = "bookings"
	OperationCreate       = "create_booking"
	OperationUser         = "user"
	OperationVendors      = "vendors"
	OperationTransactions = "transactions"
	OperationFetchSite    = "fetch_site"
	OperationEmbed        = "embed"
	OperationMatch        = "match_documents"
	OperationExtract      = "extract_answer"
)
