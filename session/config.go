package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/pokitdok/resilience"
	"github.com/kbukum/pokitdok/security"
	"github.com/kbukum/pokitdok/util"
	"github.com/kbukum/pokitdok/validation"
)

// Defaults for the production platform.
const (
	DefaultBasePath = "https://platform.pokitdok.com"
	DefaultVersion  = "v4"
)

// Config describes how a Session reaches and authenticates with the platform.
type Config struct {
	// ClientID and ClientSecret are required only when no AccessToken is supplied
	// or when tokens must be refreshed.
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`

	BasePath string `yaml:"base_path" mapstructure:"base_path" validate:"required,http_url"`
	Version  string `yaml:"version" mapstructure:"version" validate:"required"`

	// Authorization-code fields are stored for callers; the session itself
	// only runs the client-credentials grant.
	RedirectURI          string `yaml:"redirect_uri" mapstructure:"redirect_uri" validate:"omitempty,url"`
	Scope                string `yaml:"scope" mapstructure:"scope"`
	TokenRefreshCallback string `yaml:"token_refresh_callback" mapstructure:"token_refresh_callback"`
	AuthCode             string `yaml:"code" mapstructure:"code"`

	// AutoRefresh retries a request once with a new token after a 401.
	AutoRefresh bool `yaml:"auto_refresh" mapstructure:"auto_refresh"`

	// AccessToken skips the initial token fetch when set.
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`

	// Timeout bounds each HTTP exchange of the default transport; 0 means none.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	// TLS configures certificate verification for the default transport.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	// RateLimit paces requests of the default transport, token fetches included.
	RateLimit resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.BasePath = util.Coalesce(c.BasePath, DefaultBasePath)
	c.Version = util.Coalesce(c.Version, DefaultVersion)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// HTTPClient builds the *http.Client of the default transport.
func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLS.Build()
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: c.Timeout}
	if tlsConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		client.Transport = transport
	}
	return client, nil
}

// BaseURL returns <base_path>/api/<version>.
func (c *Config) BaseURL() string {
	return c.trimmedBase() + "/api/" + c.Version
}

// TokenURL returns <base_path>/oauth2/token.
func (c *Config) TokenURL() string {
	return c.trimmedBase() + "/oauth2/token"
}

// AuthorizeURL returns <base_path>/oauth2/authorize.
func (c *Config) AuthorizeURL() string {
	return c.trimmedBase() + "/oauth2/authorize"
}

func (c *Config) trimmedBase() string {
	return strings.TrimRight(c.BasePath, "/")
}
