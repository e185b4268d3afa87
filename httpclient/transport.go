package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/resilience"
	"github.com/kbukum/pokitdok/version"
)

// Transport executes a built request and classifies the response.
// Execute blocks until the exchange completes.
//
// Network failures and non-2xx statuses are reported through the Result,
// not the error. The error is reserved for a body that is present but is
// not a JSON object (FROM_JSON); the Result is still returned with it.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	client    *http.Client
	log       *logger.Logger
	metrics   *observability.Metrics
	limiter   *resilience.RateLimiter
	userAgent string
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient sets the client used for round trips.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithLogger sets the logger exchanges are reported to.
func WithLogger(l *logger.Logger) TransportOption {
	return func(t *HTTPTransport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithMetrics sets the instruments executions are recorded on.
func WithMetrics(m *observability.Metrics) TransportOption {
	return func(t *HTTPTransport) { t.metrics = m }
}

// WithRateLimiter paces executions through l. A nil limiter never blocks.
func WithRateLimiter(l *resilience.RateLimiter) TransportOption {
	return func(t *HTTPTransport) { t.limiter = l }
}

// WithUserAgent overrides the User-Agent sent when a request carries none.
func WithUserAgent(ua string) TransportOption {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

// NewHTTPTransport creates a transport. Without options it uses a plain
// &http.Client{} with no timeout.
func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client:    &http.Client{},
		userAgent: version.UserAgent(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Get("httpclient")
	}
	if t.metrics == nil {
		t.metrics = observability.DefaultMetrics()
	}
	return t
}

// Execute sends req once.
func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	target := redactURL(req.URL())

	ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
		attribute.String(observability.AttrHTTPMethod, req.Method()),
		attribute.String(observability.AttrURL, target),
	)
	defer span.End()

	result, err := t.roundTrip(ctx, req)

	span.SetAttributes(attribute.String(observability.AttrOutcome, result.Outcome.String()))
	if result.StatusCode > 0 {
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, result.StatusCode))
	}
	switch {
	case err != nil:
		observability.SetSpanError(span, err)
	case result.Outcome != OutcomeSuccess:
		observability.SetSpanError(span, result.Err)
	}

	elapsed := time.Since(start)
	t.metrics.RecordRequest(ctx, req.Method(), result.Outcome.String(), elapsed)

	fields := logger.Fields(
		logger.FieldMethod, req.Method(),
		logger.FieldURL, target,
		logger.FieldStatus, result.StatusCode,
		logger.FieldOutcome, result.Outcome.String(),
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if err != nil {
		t.log.WithError(err).Warn("response body is not a JSON object", fields)
	} else if result.Err != nil {
		t.log.WithError(result.Err).Debug("platform request failed", fields)
	} else {
		t.log.Debug("platform request", fields)
	}

	return result, err
}

func (t *HTTPTransport) roundTrip(ctx context.Context, req *Request) (*Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return &Result{Outcome: OutcomeFailure, Err: classifyNetworkError(ctx, err)}, nil
	}

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		return &Result{Outcome: OutcomeFailure, Err: err}, nil
	}
	if httpReq.Header.Get(HeaderUserAgent) == "" && t.userAgent != "" {
		httpReq.Header.Set(HeaderUserAgent, t.userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return &Result{Outcome: OutcomeFailure, Err: classifyNetworkError(ctx, err)}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{
			Outcome:    OutcomeFailure,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Err:        classifyNetworkError(ctx, fmt.Errorf("read response body: %w", err)),
		}, nil
	}

	outcome, classErr := ClassifyStatusCode(resp.StatusCode, body)
	result := &Result{
		Outcome:    outcome,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Err:        classErr,
	}

	decoded, err := decodeObject(body)
	if err != nil {
		return result, errors.FromJSON(err).WithDetail("status", resp.StatusCode)
	}
	result.JSON = decoded
	return result, nil
}

// decodeObject parses a non-empty body as a JSON object.
func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// redactURL drops the query string, which can carry member data, for logs
// and span attributes.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		base, _, _ := strings.Cut(raw, "?")
		return base
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
