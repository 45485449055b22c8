// Package cal is a client for the Cal.com v2 REST API.
//
// It covers what the scheduling tools need: the owner's profile and
// default schedule, the primary connected calendar and its busy times,
// bookable slots, event types, bookings, and booking creation.
// CheckAvailability and Book combine those calls with the availability
// resolver.
//
// The API key is sent as the raw Authorization header value. Some
// endpoints are pinned to an API version through the cal-api-version
// header.
package cal
