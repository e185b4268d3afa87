package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/resilience"
	"github.com/kbukum/pokitdok/version"
)

func newTestTransport(opts ...TransportOption) *HTTPTransport {
	return NewHTTPTransport(append([]TransportOption{WithLogger(logger.Nop())}, opts...)...)
}

func execute(t *testing.T, tr Transport, rawURL, method string, params Params) (*Result, error) {
	t.Helper()
	req, err := NewRequest(rawURL, method, JSONHeaders("tok"), params, nil)
	require.NoError(t, err)
	return tr.Execute(context.Background(), req)
}

func TestHTTPTransport_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get(HeaderAuthorization))
		assert.Equal(t, "MOCKPAYER", r.URL.Query().Get("trading_partner_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	res, err := execute(t, newTestTransport(), srv.URL, http.MethodGet, mockPayer)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "", res.Message())
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, map[string]any{"data": map[string]any{"ok": true}}, res.JSON)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.NoError(t, res.Err)
}

func TestHTTPTransport_PostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ContentTypeJSON, r.Header.Get(HeaderContentType))
		assert.JSONEq(t, `{"trading_partner_id":"MOCKPAYER"}`, string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	res, err := execute(t, newTestTransport(), srv.URL, http.MethodPost, mockPayer)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Nil(t, res.JSON)
}

func TestHTTPTransport_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
	}))
	defer srv.Close()

	res, err := execute(t, newTestTransport(), srv.URL, http.MethodGet, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeAuthExpired, res.Outcome)
	assert.False(t, res.Succeeded())
	assert.Equal(t, TokenExpired, res.Message())
	assert.Equal(t, "invalid_token", res.JSON["error"])
	assert.True(t, errors.HasCode(res.Err, errors.ErrCodeTokenExpired))
}

func TestHTTPTransport_OtherStatusesFail(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusTooManyRequests, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"errors":["nope"]}`))
			}))
			defer srv.Close()

			res, err := execute(t, newTestTransport(), srv.URL, http.MethodGet, nil)
			require.NoError(t, err)

			assert.Equal(t, OutcomeFailure, res.Outcome)
			assert.Equal(t, "", res.Message())
			appErr, ok := errors.As(res.Err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeUnexpectedStatus, appErr.Code)
			assert.Equal(t, status, appErr.StatusCode)
			assert.Equal(t, []any{"nope"}, res.JSON["errors"])
		})
	}
}

func TestHTTPTransport_BodyNotJSONObject(t *testing.T) {
	for name, body := range map[string]string{
		"html":  "<html>oops</html>",
		"array": `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			res, err := execute(t, newTestTransport(), srv.URL, http.MethodGet, nil)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeFromJSON))
			assert.False(t, errors.IsTransport(err))
			require.NotNil(t, res)
			assert.Equal(t, []byte(body), res.Body)
			assert.Nil(t, res.JSON)
		})
	}
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res, err := execute(t, newTestTransport(), addr, http.MethodGet, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.Equal(t, 0, res.StatusCode)
	assert.True(t, errors.HasCode(res.Err, errors.ErrCodeConnectionFailed))
	assert.True(t, errors.IsRetryable(res.Err))
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tr := newTestTransport(WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	res, err := execute(t, tr, srv.URL, http.MethodGet, nil)
	require.NoError(t, err)
	assert.True(t, errors.HasCode(res.Err, errors.ErrCodeTimeout))
}

func TestHTTPTransport_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	req, err := NewRequest(srv.URL, http.MethodGet, nil, nil, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestTransport().Execute(ctx, req)
	require.NoError(t, err)
	assert.True(t, errors.HasCode(res.Err, errors.ErrCodeTimeout))
}

func TestHTTPTransport_RateLimitedWaitCanceled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 0.001, Burst: 1})
	tr := newTestTransport(WithRateLimiter(limiter))

	res, err := execute(t, tr, srv.URL, http.MethodGet, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err := NewRequest(srv.URL, http.MethodGet, nil, nil, nil)
	require.NoError(t, err)
	res, err = tr.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, res.Outcome)
	assert.True(t, errors.HasCode(res.Err, errors.ErrCodeTimeout))
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPTransport_DefaultClientHasNoTimeout(t *testing.T) {
	tr := NewHTTPTransport()
	assert.Equal(t, time.Duration(0), tr.client.Timeout)
}

func TestHTTPTransport_UserAgent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get(HeaderUserAgent))
	}))
	defer srv.Close()

	_, err := execute(t, newTestTransport(), srv.URL, http.MethodGet, nil)
	require.NoError(t, err)
	_, err = execute(t, newTestTransport(WithUserAgent("custom/1")), srv.URL, http.MethodGet, nil)
	require.NoError(t, err)

	req, err := NewRequest(srv.URL, http.MethodGet, map[string]string{HeaderUserAgent: "caller/2"}, nil, nil)
	require.NoError(t, err)
	_, err = newTestTransport().Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{version.UserAgent(), "custom/1", "caller/2"}, got)
}

func TestHTTPTransport_RecordsSpanAndMetrics(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err = execute(t, newTestTransport(WithMetrics(metrics)), srv.URL+"/payers/", http.MethodGet, mockPayer)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, observability.SpanHTTPRequest, spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String(observability.AttrURL, srv.URL+"/payers/"))
	assert.Contains(t, spans[0].Attributes, attribute.String(observability.AttrOutcome, "auth_expired"))
	assert.Contains(t, spans[0].Attributes, attribute.Int(observability.AttrStatusCode, http.StatusUnauthorized))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var requests int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == observability.MetricRequests {
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					requests += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), requests)
}

func TestHTTPTransport_LogsWithoutQuery(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: buf}, "test")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := execute(t, NewHTTPTransport(WithLogger(log)), srv.URL+"/identity/", http.MethodGet,
		Params{{Key: "first_name", Value: StringValue("Jane")}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/identity/")
	assert.NotContains(t, out, "Jane")
	assert.NotContains(t, out, "Bearer")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://platform.test/api/v4/payers/", redactURL("https://user:pw@platform.test/api/v4/payers/?a=b"))
	assert.Equal(t, "::bad", redactURL("::bad?x=1"))
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status  int
		outcome Outcome
		code    errors.ErrorCode
	}{
		{200, OutcomeSuccess, ""},
		{204, OutcomeSuccess, ""},
		{299, OutcomeSuccess, ""},
		{401, OutcomeAuthExpired, errors.ErrCodeTokenExpired},
		{403, OutcomeFailure, errors.ErrCodeUnexpectedStatus},
		{302, OutcomeFailure, errors.ErrCodeUnexpectedStatus},
		{500, OutcomeFailure, errors.ErrCodeUnexpectedStatus},
	}
	for _, tt := range tests {
		outcome, err := ClassifyStatusCode(tt.status, nil)
		assert.Equal(t, tt.outcome, outcome, tt.status)
		if tt.code == "" {
			assert.NoError(t, err)
		} else {
			assert.True(t, errors.HasCode(err, tt.code), tt.status)
		}
	}
}
