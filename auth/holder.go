package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Holder owns the current access token. The token is replaced wholesale,
// never modified in place.
type Holder struct {
	mu    sync.RWMutex
	token *oauth2.Token
	group singleflight.Group
}

// NewHolder creates a holder seeded with initial, which may be nil.
func NewHolder(initial *oauth2.Token) *Holder {
	return &Holder{token: initial}
}

// Token returns the current token, nil if none has been obtained.
func (h *Holder) Token() *oauth2.Token {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// AccessToken returns the current access token string, "" if none.
func (h *Holder) AccessToken() string {
	if t := h.Token(); t != nil {
		return t.AccessToken
	}
	return ""
}

// Set replaces the current token.
func (h *Holder) Set(t *oauth2.Token) {
	h.mu.Lock()
	h.token = t
	h.mu.Unlock()
}

// Refresh obtains a replacement for the token stale that a caller saw
// rejected. If the held token already differs from stale, another caller
// has refreshed it and it is returned without fetching. Otherwise
// concurrent callers share a single fetch. On failure the held token is
// left unchanged.
func (h *Holder) Refresh(ctx context.Context, stale string, fetcher TokenFetcher) (*oauth2.Token, error) {
	if current := h.Token(); current != nil && current.AccessToken != stale {
		return current, nil
	}

	v, err, _ := h.group.Do("refresh", func() (any, error) {
		if current := h.Token(); current != nil && current.AccessToken != stale {
			return current, nil
		}
		token, err := fetcher.FetchToken(ctx)
		if err != nil {
			return nil, err
		}
		h.Set(token)
		return token, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}
