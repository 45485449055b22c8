package instrumentation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: agentdesk)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	// In Kubernetes, this is typically the pod name
	ServiceInstanceID string

	// K8sNamespace is the Kubernetes namespace where the service is running
	K8sNamespace string

	// K8sPodName is the Kubernetes pod name
	K8sPodName string

	// Enabled determines if instrumentation is active (default: true)
	// Set to false via INSTRUMENTATION_ENABLED=false to disable metrics and tracing
	Enabled bool

	// MetricsExporter specifies the metrics exporter type
	// Options: "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter specifies the tracing exporter type
	// Options: "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint
	// Example: "localhost:4318" (without protocol prefix)
	OTLPEndpoint string

	// OTLPInsecure controls whether to use insecure HTTP for OTLP export
	// When false (default), uses TLS for secure transport
	// Set to true only for local development or testing with unencrypted endpoints
	// WARNING: Never use insecure transport in production - traces may contain
	// sensitive metadata and should be encrypted in transit
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// PrometheusEndpoint is the path for the Prometheus metrics endpoint (default: "/metrics")
	PrometheusEndpoint string

	// DetailedLabels adds the caller's email domain and the knowledge vendor
	// to tool metrics. Off by default; cardinality grows with callers.
	DetailedLabels bool

	// AuditLogging configures audit logging behavior.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true).
	Enabled bool

	// IncludePII logs the caller and attendee emails in clear instead of
	// their hashes (default: false).
	IncludePII bool

	// LogLevel is the slog level audit records are emitted at (default: info).
	LogLevel string
}

// DefaultConfig reads the instrumentation settings from the environment.
// Unparseable values fall back to the defaults.
func DefaultConfig() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("OTEL_SERVICE_NAME", "agentdesk")
	v.SetDefault("METRICS_EXPORTER", ExporterPrometheus)
	v.SetDefault("TRACING_EXPORTER", ExporterNone)
	v.SetDefault("PROMETHEUS_ENDPOINT", "/metrics")
	v.SetDefault("AUDIT_LOGGING_LEVEL", "info")

	return Config{
		ServiceName:        v.GetString("OTEL_SERVICE_NAME"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  v.GetString("OTEL_SERVICE_INSTANCE_ID"),
		K8sNamespace:       firstNonEmpty(v.GetString("K8S_NAMESPACE"), v.GetString("POD_NAMESPACE")),
		K8sPodName:         firstNonEmpty(v.GetString("K8S_POD_NAME"), v.GetString("HOSTNAME")),
		Enabled:            envBool(v, "INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    v.GetString("METRICS_EXPORTER"),
		TracingExporter:    v.GetString("TRACING_EXPORTER"),
		OTLPEndpoint:       v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:       envBool(v, "OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  envFloat(v, "OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: v.GetString("PROMETHEUS_ENDPOINT"),
		DetailedLabels:     envBool(v, "METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBool(v, "AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBool(v, "AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   v.GetString("AUDIT_LOGGING_LEVEL"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}
	if _, ok := auditLevels[c.AuditLogging.LogLevel]; c.AuditLogging.LogLevel != "" && !ok {
		return fmt.Errorf("invalid audit log level %q, must be one of: debug, info, warn, error", c.AuditLogging.LogLevel)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// envBool parses key strictly; viper's GetBool would turn "maybe" into false.
func envBool(v *viper.Viper, key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(v.GetString(key))
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(v *viper.Viper, key string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(v.GetString(key), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// Constants for metric label values.
const (
	// Status values
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusUnknown  = "unknown"

	// Upstream service names
	ServiceCal         = "cal"
	ServiceTeleperson  = "teleperson"
	ServiceReader      = "reader"
	ServiceSupabase    = "supabase"
	ServicePostgres    = "postgres"
	ServiceHuggingFace = "huggingface"
	ServiceGemini      = "gemini"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	// DefaultMetricInterval is the export interval of the periodic
	// OTLP and stdout readers.
	DefaultMetricInterval = 10 * time.Second
)
