package instrumentation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

var auditLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ToolInvocation is the audit record of one MCP tool call.
//
// UserEmail is the email the call acted on (the attendee of a booking, the
// CRM user whose vendors were read, the address a website was derived
// from). It is PII and only logged in clear with IncludePII.
type ToolInvocation struct {
	Tool      string
	UserEmail string
	Vendor    string

	// Upstream the tool talked to, if a single one.
	ServiceName string
	Operation   string

	StartTime time.Time
	Duration  time.Duration
	Outcome   string
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts the clock for tool.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
		Outcome:   StatusUnknown,
	}
}

func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.UserEmail = strings.TrimSpace(email)
	return ti
}

func (ti *ToolInvocation) WithVendor(vendor string) *ToolInvocation {
	ti.Vendor = vendor
	return ti
}

func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext copies the trace and span ids of the span in ctx.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the clock and records the outcome.
func (ti *ToolInvocation) Complete(outcome string, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Outcome = outcome
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(StatusSuccess, nil)
}

func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(StatusError, err)
}

// CompleteNotFound records an expected empty answer, such as a weekday
// without availability. It is not a failure.
func (ti *ToolInvocation) CompleteNotFound() *ToolInvocation {
	return ti.Complete(StatusNotFound, nil)
}

// Success reports whether the call did not fail.
func (ti *ToolInvocation) Success() bool {
	return ti.Outcome == StatusSuccess || ti.Outcome == StatusNotFound
}

// UserDomain returns the domain of UserEmail, "unknown" when absent.
func (ti *ToolInvocation) UserDomain() string {
	return ExtractUserDomain(ti.UserEmail)
}

// attrs builds the log attributes. With includePII the email is logged in
// clear, otherwise only its domain.
func (ti *ToolInvocation) attrs(includePII bool) []any {
	attrs := []any{
		slog.String("tool", ti.Tool),
		slog.String("outcome", ti.Outcome),
		slog.Duration("duration", ti.Duration),
	}
	if includePII {
		if ti.UserEmail != "" {
			attrs = append(attrs, slog.String("user", ti.UserEmail))
		}
	} else if ti.UserEmail != "" {
		attrs = append(attrs, slog.String("user_domain", ti.UserDomain()))
	}
	if ti.Vendor != "" {
		attrs = append(attrs, slog.String("vendor", ti.Vendor))
	}
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if includePII && ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger writes one record per tool invocation.
type AuditLogger struct {
	logger     *slog.Logger
	level      slog.Level
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an enabled AuditLogger that never logs PII.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates an AuditLogger from config.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	level, ok := auditLevels[strings.ToLower(config.LogLevel)]
	if !ok {
		level = slog.LevelInfo
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("component", "audit")),
		level:      level,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogToolInvocation logs ti. Failed calls are logged at warn or above.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	if al == nil || !al.enabled {
		return
	}

	level := al.level
	msg := "tool_executed"
	if !ti.Success() {
		msg = "tool_failed"
		if level < slog.LevelWarn {
			level = slog.LevelWarn
		}
	}
	al.logger.Log(ctx, level, msg, ti.attrs(al.includePII)...)
}
