package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return rec
}

func TestToolInvocation_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		complete    func(*ToolInvocation)
		wantOutcome string
		wantSuccess bool
	}{
		{"success", func(ti *ToolInvocation) { ti.CompleteSuccess() }, StatusSuccess, true},
		{"not found", func(ti *ToolInvocation) { ti.CompleteNotFound() }, StatusNotFound, true},
		{"error", func(ti *ToolInvocation) { ti.CompleteWithError(errors.New("boom")) }, StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti := NewToolInvocation("calendar_check_availability")
			tt.complete(ti)
			if ti.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", ti.Outcome, tt.wantOutcome)
			}
			if ti.Success() != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", ti.Success(), tt.wantSuccess)
			}
		})
	}
}

func TestAuditLogger_AnonymizesByDefault(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ti := NewToolInvocation("vendor_list_user_vendors").
		WithUser("jane@example.com").
		WithService(ServiceTeleperson, OperationVendors).
		CompleteSuccess()
	al.LogToolInvocation(context.Background(), ti)

	rec := decodeRecord(t, &buf)
	if rec["msg"] != "tool_executed" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if _, ok := rec["user"]; ok {
		t.Error("email must not be logged without IncludePII")
	}
	if rec["user_domain"] != "example.com" {
		t.Errorf("user_domain = %v", rec["user_domain"])
	}
	if rec["service"] != ServiceTeleperson {
		t.Errorf("service = %v", rec["service"])
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	})

	ti := NewToolInvocation("calendar_create_booking").
		WithUser("jane@example.com").
		CompleteWithError(errors.New("cal: slot taken"))
	al.LogToolInvocation(context.Background(), ti)

	rec := decodeRecord(t, &buf)
	if rec["msg"] != "tool_failed" || rec["level"] != "WARN" {
		t.Errorf("unexpected record %v", rec)
	}
	if rec["user"] != "jane@example.com" {
		t.Errorf("user = %v", rec["user"])
	}
	if rec["error"] != "cal: slot taken" {
		t.Errorf("error = %v", rec["error"])
	}
}

func TestAuditLogger_LevelAndDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	debug := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true, LogLevel: "debug"})
	debug.LogToolInvocation(context.Background(), NewToolInvocation("vendor_get").CompleteSuccess())
	if buf.Len() != 0 {
		t.Errorf("debug audit record should be filtered at info, got %s", buf.String())
	}

	disabled := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	disabled.LogToolInvocation(context.Background(), NewToolInvocation("vendor_get").CompleteWithError(errors.New("x")))
	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote %s", buf.String())
	}

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(context.Background(), NewToolInvocation("vendor_get"))
}
