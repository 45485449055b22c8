package instrumentation

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
)

func newTestMetrics(t *testing.T, detailed bool) *Metrics {
	t.Helper()
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"), detailed)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()

	for _, detailed := range []bool{false, true} {
		m := newTestMetrics(t, detailed)

		// None of these may panic.
		m.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 100*time.Millisecond)
		m.RecordUpstreamOperation(ctx, ServiceCal, OperationBusyTimes, StatusSuccess, 200*time.Millisecond)
		m.RecordUpstreamOperation(ctx, ServiceTeleperson, OperationVendors, StatusError, 50*time.Millisecond)
		m.RecordToolInvocation(ctx, "calendar_check_availability", StatusNotFound, time.Second)
		m.RecordToolInvocationForUser(ctx, "vendor_list_user_vendors", StatusSuccess, "jane@example.com", time.Second)
		m.RecordKnowledgeMatches(ctx, "Teleperson", 6)
	}
}

func TestMetrics_ZeroValueAndNil(t *testing.T) {
	ctx := context.Background()

	var zero Metrics
	zero.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	zero.RecordUpstreamOperation(ctx, ServiceReader, OperationFetchSite, StatusSuccess, time.Millisecond)
	zero.RecordToolInvocation(ctx, "website_contextualize", StatusSuccess, time.Millisecond)
	zero.RecordKnowledgeMatches(ctx, "", 0)

	var nilMetrics *Metrics
	nilMetrics.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	nilMetrics.RecordUpstreamOperation(ctx, ServiceReader, OperationFetchSite, StatusSuccess, time.Millisecond)
	nilMetrics.RecordToolInvocationForUser(ctx, "website_contextualize", StatusSuccess, "a@b.c", time.Millisecond)
	nilMetrics.RecordKnowledgeMatches(ctx, "Teleperson", 3)
}
