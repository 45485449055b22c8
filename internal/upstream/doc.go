// Package upstream is the HTTP base shared by the calendar, CRM, reader and
// knowledge clients.
//
// A Client holds a base URL, static headers (API keys), a timeout and a
// rate limiter. Every call gets an X-Request-ID, a client span and an
// upstream_api_operations_total sample. Non-2xx responses, transport
// failures and undecodable bodies all come back as *Error, which keeps the
// upstream message as-is.
//
// Calls are never retried.
package upstream
