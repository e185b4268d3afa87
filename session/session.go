package session

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/kbukum/pokitdok/auth"
	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/httpclient"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/resilience"
	"github.com/kbukum/pokitdok/util"
)

// Session holds the OAuth2 state for one platform client and executes
// authenticated requests. It is safe for concurrent use.
type Session struct {
	creds        auth.Credentials
	baseURL      string
	tokenURL     string
	authorizeURL string
	redirectURI  string
	scope        string
	autoRefresh  bool
	callback     string
	authCode     string

	tokens    *auth.Holder
	transport httpclient.Transport
	fetcher   auth.TokenFetcher
	log       *logger.Logger
}

// New creates a session. With cfg.AccessToken set no network call is made;
// otherwise a token is fetched synchronously and its failure fails New.
func New(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get("session")
	}
	if o.metrics == nil {
		o.metrics = observability.DefaultMetrics()
	}
	if o.transport == nil {
		if o.httpClient == nil {
			client, err := cfg.HTTPClient()
			if err != nil {
				return nil, err
			}
			o.httpClient = client
		}
		o.transport = httpclient.NewHTTPTransport(
			httpclient.WithHTTPClient(o.httpClient),
			httpclient.WithLogger(o.log),
			httpclient.WithMetrics(o.metrics),
			httpclient.WithRateLimiter(resilience.NewRateLimiter(cfg.RateLimit)),
		)
	}

	creds := auth.Credentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret}
	if o.fetcher == nil {
		o.fetcher = auth.NewClientCredentials(creds, cfg.TokenURL(),
			auth.WithTransport(o.transport),
			auth.WithLogger(o.log),
			auth.WithMetrics(o.metrics),
		)
	}

	s := &Session{
		creds:        creds,
		baseURL:      cfg.BaseURL(),
		tokenURL:     cfg.TokenURL(),
		authorizeURL: cfg.AuthorizeURL(),
		redirectURI:  cfg.RedirectURI,
		scope:        cfg.Scope,
		autoRefresh:  cfg.AutoRefresh,
		callback:     cfg.TokenRefreshCallback,
		authCode:     cfg.AuthCode,
		tokens:       auth.NewHolder(auth.StaticToken(cfg.AccessToken)),
		transport:    o.transport,
		fetcher:      o.fetcher,
		log:          o.log,
	}

	if cfg.AccessToken == "" {
		if err := s.RefreshToken(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Request sends one call to baseURL+path. After a 401 with auto-refresh
// enabled the token is refreshed once and the same request is sent exactly
// once more. The decoded body of the final attempt is returned, an empty
// map when there was none; on failure it is returned together with the
// error.
func (s *Session) Request(ctx context.Context, path, method string, params httpclient.Params, files []httpclient.FilePart) (map[string]any, error) {
	sent := s.tokens.AccessToken()
	req, err := httpclient.NewRequest(s.baseURL+path, method, httpclient.JSONHeaders(sent), params, files)
	if err != nil {
		return nil, err
	}

	res, err := s.transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.autoRefresh && res.Outcome == httpclient.OutcomeAuthExpired {
		token, err := s.refresh(ctx, sent)
		if err != nil {
			return res.JSON, err
		}
		req.SetBearer(token.AccessToken)

		res, err = s.transport.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	return finish(res)
}

func finish(res *httpclient.Result) (map[string]any, error) {
	if res.Succeeded() {
		if res.JSON == nil {
			return map[string]any{}, nil
		}
		return res.JSON, nil
	}
	if res.Err != nil {
		return res.JSON, res.Err
	}
	if res.Outcome == httpclient.OutcomeAuthExpired {
		return res.JSON, errors.TokenExpired()
	}
	return res.JSON, errors.UnexpectedStatus(res.StatusCode, res.Body)
}

// Get sends a GET request.
func (s *Session) Get(ctx context.Context, path string, params httpclient.Params) (map[string]any, error) {
	return s.Request(ctx, path, http.MethodGet, params, nil)
}

// Post sends a POST request.
func (s *Session) Post(ctx context.Context, path string, params httpclient.Params) (map[string]any, error) {
	return s.Request(ctx, path, http.MethodPost, params, nil)
}

// Put sends a PUT request.
func (s *Session) Put(ctx context.Context, path string, params httpclient.Params) (map[string]any, error) {
	return s.Request(ctx, path, http.MethodPut, params, nil)
}

// Delete sends a DELETE request.
func (s *Session) Delete(ctx context.Context, path string, params httpclient.Params) (map[string]any, error) {
	return s.Request(ctx, path, http.MethodDelete, params, nil)
}

// RefreshToken fetches a new access token and stores it. On failure the
// current token is kept.
func (s *Session) RefreshToken(ctx context.Context) error {
	_, err := s.refresh(ctx, s.tokens.AccessToken())
	return err
}

// refresh replaces the token stale. Concurrent callers that saw the same
// stale token share one fetch.
func (s *Session) refresh(ctx context.Context, stale string) (*oauth2.Token, error) {
	if !s.creds.Complete() {
		err := errors.MissingCredentials()
		s.log.Warn("cannot refresh access token", logger.ErrorFields("refresh_token", err))
		return nil, err
	}

	token, err := s.tokens.Refresh(ctx, stale, s.fetcher)
	if err != nil {
		s.log.WithError(err).Error("access token refresh failed", logger.Fields(
			logger.FieldClientID, util.MaskSecret(s.creds.ClientID, 4),
		))
		return nil, err
	}
	return token, nil
}

// ClientID returns the OAuth2 client id.
func (s *Session) ClientID() string { return s.creds.ClientID }

// BaseURL returns the API root requests are resolved against.
func (s *Session) BaseURL() string { return s.baseURL }

// TokenURL returns the token endpoint.
func (s *Session) TokenURL() string { return s.tokenURL }

// AuthorizeURL returns the authorization endpoint.
func (s *Session) AuthorizeURL() string { return s.authorizeURL }

// RedirectURI returns the configured redirect URI.
func (s *Session) RedirectURI() string { return s.redirectURI }

// Scope returns the requested scope.
func (s *Session) Scope() string { return s.scope }

// AutoRefresh reports whether 401 responses trigger a refresh and retry.
func (s *Session) AutoRefresh() bool { return s.autoRefresh }

// TokenRefreshCallback returns the configured token refresh callback URL.
func (s *Session) TokenRefreshCallback() string { return s.callback }

// AuthCode returns the stored authorization code.
func (s *Session) AuthCode() string { return s.authCode }

// AccessToken returns the current access token, "" if none.
func (s *Session) AccessToken() string { return s.tokens.AccessToken() }

// Token returns the current token with its metadata, nil if none.
func (s *Session) Token() *oauth2.Token { return s.tokens.Token() }

// OAuth2Config describes the client for callers that run an
// authorization-code flow themselves.
func (s *Session) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.authorizeURL,
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: s.redirectURI,
		Scopes:      strings.Fields(s.scope),
	}
}
