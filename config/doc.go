// Package config loads SDK configuration from a config.yml file, a .env
// file and the process environment.
//
// Environment variables override file values. Keys are matched by
// expanding UPPER_SNAKE names into nested variants, so POKITDOK_CLIENT_ID
// sets pokitdok.client_id and LOGGING_LEVEL sets logging.level.
//
//	cfg, err := config.Load()
//	client, err := pokitdok.NewFromConfig(ctx, cfg)
package config
