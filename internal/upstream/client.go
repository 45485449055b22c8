package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/teemow/agentdesk/internal/instrumentation"
	"github.com/teemow/agentdesk/internal/logging"
)

const (
	// DefaultTimeout applies when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize applies when Config.MaxBodySize is zero.
	DefaultMaxBodySize = 10 << 20

	headerRequestID = "X-Request-ID"
)

// Config configures a Client.
type Config struct {
	// Service names the upstream in errors, logs and metrics.
	Service string
	// BaseURL is prefixed to every request path. No trailing slash.
	BaseURL string
	// Headers are set on every request (API keys, version pins).
	Headers map[string]string
	// Timeout bounds a single call. Zero means DefaultTimeout.
	Timeout time.Duration
	// RateLimit is the sustained number of calls per second. Zero or
	// negative disables limiting.
	RateLimit float64
	// Burst is the limiter bucket size. Defaults to 1.
	Burst int
	// MaxBodySize is the largest response body accepted. Larger bodies
	// fail rather than being truncated.
	MaxBodySize int64
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Metrics    *instrumentation.Metrics
	Logger     *slog.Logger
}

// Client performs JSON and text calls against one upstream.
type Client struct {
	service string
	baseURL string
	headers map[string]string
	http    *http.Client
	limiter *rate.Limiter
	maxBody int64
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &Client{
		service: cfg.Service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
		http:    httpClient,
		limiter: limiter,
		maxBody: maxBody,
		metrics: cfg.Metrics,
		logger:  logging.WithService(logger, cfg.Service),
	}
}

// Service returns the configured service name.
func (c *Client) Service() string {
	return c.service
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one call.
type Request struct {
	// Op names the call for metrics and errors (see instrumentation.Operation*).
	Op     string
	Method string
	// Path is appended to the base URL. An absolute URL is used as is.
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded when non-nil.
	Body any
}

// GetJSON issues a GET and decodes the JSON response into dest.
func (c *Client) GetJSON(ctx context.Context, op, path string, query url.Values, dest any) error {
	_, err := c.Do(ctx, Request{Op: op, Method: http.MethodGet, Path: path, Query: query}, dest)
	return err
}

// PostJSON sends payload as JSON and decodes the response into dest.
func (c *Client) PostJSON(ctx context.Context, op, path string, payload, dest any) error {
	_, err := c.Do(ctx, Request{Op: op, Method: http.MethodPost, Path: path, Body: payload}, dest)
	return err
}

// GetText issues a GET and returns the response body as a string. Accept
// defaults to text/plain.
func (c *Client) GetText(ctx context.Context, op, path string, header http.Header) (string, error) {
	header = header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", "text/plain")
	}
	body, err := c.Do(ctx, Request{Op: op, Method: http.MethodGet, Path: path, Header: header}, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Do performs req. On success the raw body is returned and, when dest is
// non-nil, decoded into it as JSON.
func (c *Client) Do(ctx context.Context, req Request, dest any) (body []byte, err error) {
	start := time.Now()
	requestID := uuid.NewString()

	ctx, span := instrumentation.StartUpstreamSpan(ctx, c.service, req.Op,
		attribute.String(instrumentation.SpanAttrHTTPMethod, req.Method),
		attribute.String(instrumentation.SpanAttrRequestID, requestID),
	)
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		}
		span.End()
		c.metrics.RecordUpstreamOperation(ctx, c.service, req.Op, status, time.Since(start))
		c.logger.DebugContext(ctx, "upstream call",
			logging.Operation(req.Op),
			logging.RequestID(requestID),
			logging.Status(status),
			logging.Duration(time.Since(start)),
			slog.String("trace_id", instrumentation.GetTraceID(ctx)),
			logging.Err(err))
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.fail(req.Op, fmt.Errorf("rate limiter: %w", err))
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, c.fail(req.Op, err)
	}
	httpReq.Header.Set(headerRequestID, requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.fail(req.Op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int(instrumentation.SpanAttrHTTPStatus, resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, c.fail(req.Op, fmt.Errorf("read response: %w", err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, c.fail(req.Op, fmt.Errorf("response exceeds %d bytes", c.maxBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Service:    c.service,
			Op:         req.Op,
			StatusCode: resp.StatusCode,
			Message:    messageFromBody(body),
		}
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return nil, c.fail(req.Op, fmt.Errorf("decode response: %w", err))
		}
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := req.Path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = c.baseURL + target
	}
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}

func (c *Client) fail(op string, err error) *Error {
	return &Error{Service: c.service, Op: op, Err: err}
}
