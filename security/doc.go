// Package security builds the TLS settings used to reach the platform.
//
//	cfg := security.TLSConfig{CAFile: "/etc/pokitdok/sandbox-ca.pem"}
//	tlsConfig, err := cfg.Build()
package security
