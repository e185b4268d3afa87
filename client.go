package pokitdok

import (
	"context"

	"github.com/kbukum/pokitdok/config"
	"github.com/kbukum/pokitdok/logger"
	"github.com/kbukum/pokitdok/observability"
	"github.com/kbukum/pokitdok/session"
	"github.com/kbukum/pokitdok/version"
)

// Client is a platform client. It is safe for concurrent use.
type Client struct {
	*session.Session

	shutdown observability.ShutdownFunc
}

// New creates a client from a session configuration.
func New(ctx context.Context, cfg session.Config, opts ...session.Option) (*Client, error) {
	s, err := session.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Session: s}, nil
}

// NewFromConfig creates a client from a loaded configuration. It builds
// the logger from cfg.Logging and, when cfg.Observability is enabled,
// installs the trace and metric exporters; Close stops them.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...session.Option) (*Client, error) {
	log := logger.New(&cfg.Logging, cfg.Name)

	shutdown, err := observability.Init(ctx, cfg.Observability, cfg.Name, version.GetShortVersion())
	if err != nil {
		return nil, err
	}

	opts = append([]session.Option{session.WithLogger(log.WithComponent("session"))}, opts...)
	s, err := session.New(ctx, cfg.PokitDok, opts...)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	log.Info("platform client ready", logger.Fields(
		"version", version.GetShortVersion(),
		"base_url", s.BaseURL(),
		"auto_refresh", s.AutoRefresh(),
		"telemetry", cfg.Observability.Enabled,
	))
	return &Client{Session: s, shutdown: shutdown}, nil
}

// Close flushes telemetry installed by NewFromConfig.
func (c *Client) Close(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}
	return c.shutdown(ctx)
}
