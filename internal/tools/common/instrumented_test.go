package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/agentdesk/internal/availability"
	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/server"
)

func newInstrumentedContext(t *testing.T) (*server.ServerContext, *bytes.Buffer) {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil)
	t.Cleanup(func() { _ = sc.Shutdown() })

	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), true)
	require.NoError(t, err)
	sc.SetMetrics(metrics)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sc.SetAuditLogger(instrumentation.NewAuditLogger(logger))
	return sc, &buf
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: "test_tool", Arguments: args}}
}

func TestInstrumentedToolHandler_WithoutInstrumentation(t *testing.T) {
	sc := server.NewServerContext(context.Background(), nil)
	defer func() { _ = sc.Shutdown() }()

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	result, err := InstrumentedToolHandler("test_tool", sc, handler)(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, result.IsError)
}

func TestInstrumentedToolHandler_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		handler     ToolHandler
		wantErr     bool
		wantMessage string
		wantOutcome string
	}{
		{
			name: "success",
			handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultText("ok"), nil
			},
			wantMessage: "tool_executed",
			wantOutcome: "outcome=success",
		},
		{
			name: "error result",
			handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return mcp.NewToolResultError("bad input"), nil
			},
			wantMessage: "tool_failed",
			wantOutcome: "outcome=error",
		},
		{
			name: "go error",
			handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return nil, errors.New("boom")
			},
			wantErr:     true,
			wantMessage: "tool_failed",
			wantOutcome: "outcome=error",
		},
		{
			name: "not found",
			handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return ErrorResult(ctx, "checking availability", &availability.NotFoundError{Weekday: "Saturday"}), nil
			},
			wantMessage: "tool_executed",
			wantOutcome: "outcome=not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, buf := newInstrumentedContext(t)
			wrapped := InstrumentedToolHandlerWithService("calendar_check_availability", instrumentation.ServiceCal, "schedules", sc, tt.handler)

			_, err := wrapped(context.Background(), callRequest(map[string]interface{}{"email": "jane@example.com"}))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			logged := buf.String()
			assert.Contains(t, logged, tt.wantMessage)
			assert.Contains(t, logged, tt.wantOutcome)
			assert.Contains(t, logged, "user_domain=example.com")
			assert.NotContains(t, logged, "jane@example.com")
			assert.Contains(t, logged, "service=cal")
		})
	}
}

func TestErrorResult(t *testing.T) {
	result := ErrorResult(context.Background(), "fetching website", errors.New("status 502"))
	require.True(t, result.IsError)
	assert.Equal(t, "Error fetching website: status 502", resultText(t, result))

	result = ErrorResult(context.Background(), "checking availability", &availability.NotFoundError{Weekday: "Sunday"})
	assert.False(t, result.IsError)
	assert.Equal(t, (&availability.NotFoundError{Weekday: "Sunday"}).Error(), resultText(t, result))
}

func TestMarkNotFound_OutsideHandler(t *testing.T) {
	assert.NotPanics(t, func() { MarkNotFound(context.Background()) })
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", result.Content[0])
	return ""
}
