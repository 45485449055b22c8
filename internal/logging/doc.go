// Package logging provides structured logging helpers for agentdesk.
//
// All logging goes through log/slog. The package fixes attribute names so
// the tool handlers, the upstream clients and the HTTP server log the same
// keys, and it masks personal data before it reaches a log line.
//
// Create a scoped logger:
//
//	logger := logging.WithService(slog.Default(), "cal")
//	logger.Info("busy times fetched", logging.Status(logging.StatusSuccess))
//
// Emails are hashed, API keys are reduced to their length:
//
//	logger.Info("vendor lookup", logging.UserHash(email), logging.Domain(email))
//	logger.Debug("key configured", "cal_api_key", logging.SanitizeToken(key))
//
// Logs always go to stderr; stdout carries the MCP stdio transport.
package logging
