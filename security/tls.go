package security

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/kbukum/pokitdok/errors"
)

// TLSConfig describes how the client verifies the platform and, for
// mutual TLS, presents itself. The zero value means system defaults.
type TLSConfig struct {
	// CAFile is a PEM bundle trusted in place of the system roots, for
	// sandboxes behind a private CA.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// CertFile and KeyFile hold the client certificate for mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// ServerName overrides the name verified against the certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// SkipVerify disables certificate verification. Local testing only.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// IsEnabled reports whether any setting differs from the defaults.
func (c *TLSConfig) IsEnabled() bool {
	return c != nil && (c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.MinVersion != 0)
}

// Validate checks that the certificate and key are configured together.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return errors.InvalidConfig("tls: cert_file and key_file must be set together")
	}
	return nil
}

// Build returns the *tls.Config described by c, or nil when c is not
// enabled. Unreadable or malformed files fail with INVALID_CONFIG.
func (c *TLSConfig) Build() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in for local testing
		ServerName:         c.ServerName,
		MinVersion:         c.MinVersion,
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}

	if c.CAFile != "" {
		pool, err := loadCertPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, errors.InvalidConfig("tls: failed to load client certificate").
				WithCause(err).
				WithDetail("path", c.CertFile)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidConfig("tls: failed to read CA file").
			WithCause(err).
			WithDetail("path", path)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.InvalidConfig("tls: CA file holds no PEM certificates").
			WithDetail("path", path)
	}
	return pool, nil
}
