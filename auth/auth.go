package auth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/kbukum/pokitdok/util"
)

// Credentials identify the OAuth2 client. Both fields are optional; without
// them only a pre-supplied token can be used.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both the id and the secret are set.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// String masks the secret.
func (c Credentials) String() string {
	return c.ClientID + ":" + util.MaskSecret(c.ClientSecret, 0)
}

// TokenFetcher obtains a new access token.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (*oauth2.Token, error)
}

// TokenFetcherFunc adapts an ordinary function to the TokenFetcher interface.
type TokenFetcherFunc func(ctx context.Context) (*oauth2.Token, error)

// FetchToken implements TokenFetcher.
func (f TokenFetcherFunc) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// StaticToken wraps a bare access token string as a bearer token.
func StaticToken(accessToken string) *oauth2.Token {
	if accessToken == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}
