// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the agentdesk MCP server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: inbound HTTP
//     requests on the SSE and streamable HTTP transports.
//   - upstream_api_operations_total, upstream_api_operation_duration_seconds:
//     calls to Cal.com, the Teleperson CRM, the reader proxy and the
//     knowledge backends, by service, operation and status.
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by
//     tool and status (success, error, not_found).
//   - knowledge_documents_matched: documents returned per vector search.
//
// # Tracing
//
// Spans are named tool.<name> for tool invocations and
// <service>.<operation> for upstream calls.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: agentdesk)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_PII, AUDIT_LOGGING_LEVEL
//
// The stdout exporters write to stderr so they can run next to the stdio
// transport.
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordUpstreamOperation(ctx, instrumentation.ServiceCal,
//		instrumentation.OperationBusyTimes, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
