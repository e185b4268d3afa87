package session

import (
	"net/http"

	"github.com/kbukum/pokitdok/auth"
	"github.com/kbukum/pokitdok/httpclient"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
)

type options struct {
	transport  httpclient.Transport
	fetcher    auth.TokenFetcher
	httpClient *http.Client
	log        *logger.Logger
	metrics    *observability.Metrics
}

// Option configures a Session.
type Option func(*options)

// WithTransport replaces the transport platform requests are executed with.
// The default token fetcher uses it as well.
func WithTransport(t httpclient.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithTokenFetcher replaces the client-credentials fetcher.
func WithTokenFetcher(f auth.TokenFetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithHTTPClient sets the *http.Client used by the default transport,
// replacing the one built from Config.Timeout and Config.TLS.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
