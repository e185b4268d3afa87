package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/httpclient"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/util"
)

// GrantClientCredentials is the grant_type sent to the token endpoint.
const GrantClientCredentials = "client_credentials"

// ClientCredentials fetches access tokens with the client-credentials grant.
type ClientCredentials struct {
	creds     Credentials
	tokenURL  string
	transport httpclient.Transport
	log       *logger.Logger
	metrics   *observability.Metrics
}

// Option configures a ClientCredentials fetcher.
type Option func(*ClientCredentials)

// WithTransport sets the transport token requests are sent through.
func WithTransport(t httpclient.Transport) Option {
	return func(c *ClientCredentials) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithLogger sets the logger fetches are reported to.
func WithLogger(l *logger.Logger) Option {
	return func(c *ClientCredentials) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the instruments fetches are counted on.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *ClientCredentials) { c.metrics = m }
}

// NewClientCredentials creates a fetcher posting to tokenURL.
func NewClientCredentials(creds Credentials, tokenURL string, opts ...Option) *ClientCredentials {
	c := &ClientCredentials{creds: creds, tokenURL: tokenURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("auth")
	}
	if c.transport == nil {
		c.transport = httpclient.NewHTTPTransport(httpclient.WithLogger(c.log))
	}
	if c.metrics == nil {
		c.metrics = observability.DefaultMetrics()
	}
	return c
}

// TokenURL returns the token endpoint.
func (c *ClientCredentials) TokenURL() string { return c.tokenURL }

// FetchToken performs one POST to the token endpoint. Without complete
// credentials it fails with MISSING_CREDENTIALS before any network call;
// every other failure is COULD_NOT_AUTHENTICATE.
func (c *ClientCredentials) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	if !c.creds.Complete() {
		return nil, errors.MissingCredentials()
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanTokenFetch,
		attribute.String(observability.AttrURL, c.tokenURL),
	)
	defer span.End()

	token, err := c.fetch(ctx)
	c.metrics.RecordTokenRefresh(ctx, err == nil)
	if err != nil {
		observability.SetSpanError(span, err)
		c.log.WithError(err).Warn("access token fetch failed", logger.Fields(
			logger.FieldClientID, util.MaskSecret(c.creds.ClientID, 4),
		))
		return nil, err
	}

	c.log.Info("access token fetched", logger.Fields(
		logger.FieldClientID, util.MaskSecret(c.creds.ClientID, 4),
	))
	return token, nil
}

func (c *ClientCredentials) fetch(ctx context.Context) (*oauth2.Token, error) {
	headers := map[string]string{
		httpclient.HeaderAuthorization: httpclient.BasicAuth(c.creds.ClientID, c.creds.ClientSecret),
		httpclient.HeaderContentType:   httpclient.ContentTypeForm,
	}
	params := httpclient.Params{
		{Key: "grant_type", Value: httpclient.StringValue(GrantClientCredentials)},
	}

	req, err := httpclient.NewRequest(c.tokenURL, http.MethodPost, headers, params, nil)
	if err != nil {
		return nil, errors.CouldNotAuthenticate("", err)
	}

	res, err := c.transport.Execute(ctx, req)
	if err != nil {
		return nil, errors.CouldNotAuthenticate("Token endpoint returned a malformed response", err)
	}
	if !res.Succeeded() {
		reason := "Token endpoint request failed"
		if res.StatusCode > 0 {
			reason = fmt.Sprintf("Token endpoint returned HTTP %d", res.StatusCode)
		}
		return nil, errors.CouldNotAuthenticate(reason, res.Err)
	}

	return tokenFromJSON(res.JSON)
}

// tokenFromJSON reads an RFC 6749 token response.
func tokenFromJSON(body map[string]any) (*oauth2.Token, error) {
	accessToken, _ := body["access_token"].(string)
	if accessToken == "" {
		return nil, errors.CouldNotAuthenticate("Token response has no access_token", nil)
	}

	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if tt, ok := body["token_type"].(string); ok && tt != "" {
		token.TokenType = tt
	}
	if rt, ok := body["refresh_token"].(string); ok {
		token.RefreshToken = rt
	}
	if secs, ok := body["expires_in"].(float64); ok && secs > 0 {
		token.ExpiresIn = int64(secs)
		token.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return token.WithExtra(body), nil
}
