// Package calendar_tools provides MCP tools for the calendar owner's
// Cal.com account.
//
// The tools answer availability questions for one date, list the free
// slots of the configured event type, list an attendee's bookings and
// create bookings. Bookings are only accepted inside the owner's
// available hours, and each attempt carries a fresh idempotency key.
package calendar_tools
