package auth

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/kbukum/pokitdok/errors"
	"github.com/kbukum/pokitdok/logger"
)

func tokenServer(t *testing.T, calls *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(creds Credentials, tokenURL string) *ClientCredentials {
	return NewClientCredentials(creds, tokenURL, WithLogger(logger.Nop()))
}

func TestClientCredentials_SendsGrantWithBasicAuth(t *testing.T) {
	var gotAuth, gotType, gotBody, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = io.WriteString(w, `{"access_token":"s8KYRJGTO0rWMy0zz1CCSCwsSesDyDlbNdZoRqVR","token_type":"bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	token, err := newFetcher(Credentials{ClientID: "id", ClientSecret: "secret"}, srv.URL+"/oauth2/token").
		FetchToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("id:secret")), gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
	assert.Equal(t, "grant_type=client_credentials", gotBody)

	assert.Equal(t, "s8KYRJGTO0rWMy0zz1CCSCwsSesDyDlbNdZoRqVR", token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, time.Minute)
	assert.Equal(t, float64(3600), token.Extra("expires_in"))
}

func TestClientCredentials_MissingCredentialsNoNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, http.StatusOK, `{"access_token":"x"}`)

	for _, creds := range []Credentials{{}, {ClientID: "id"}, {ClientSecret: "secret"}} {
		_, err := newFetcher(creds, srv.URL).FetchToken(context.Background())
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeMissingCredentials))
		assert.True(t, errors.IsAuthentication(err))
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestClientCredentials_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"rejected", http.StatusUnauthorized, `{"error":"invalid_client"}`},
		{"server error", http.StatusInternalServerError, ``},
		{"malformed json", http.StatusOK, `not json`},
		{"missing field", http.StatusOK, `{"token_type":"bearer"}`},
		{"wrong type", http.StatusOK, `{"access_token":42}`},
		{"empty token", http.StatusOK, `{"access_token":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := tokenServer(t, &calls, tt.status, tt.body)

			token, err := newFetcher(Credentials{ClientID: "id", ClientSecret: "secret"}, srv.URL).
				FetchToken(context.Background())
			assert.Nil(t, token)
			assert.True(t, errors.HasCode(err, errors.ErrCodeCouldNotAuthenticate), err)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestClientCredentials_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newFetcher(Credentials{ClientID: "id", ClientSecret: "secret"}, addr).FetchToken(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeCouldNotAuthenticate))
	assert.True(t, errors.HasCode(stderrors.Unwrap(err), errors.ErrCodeConnectionFailed))
}

func TestCredentials(t *testing.T) {
	c := Credentials{ClientID: "client", ClientSecret: "supersecret"}
	assert.True(t, c.Complete())
	assert.Equal(t, "client:***", c.String())
	assert.NotContains(t, c.String(), "supersecret")
	assert.False(t, Credentials{ClientID: "client"}.Complete())
}

func TestStaticToken(t *testing.T) {
	assert.Nil(t, StaticToken(""))
	tok := StaticToken("abc")
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func countingFetcher(calls *atomic.Int32, delay time.Duration) TokenFetcher {
	return TokenFetcherFunc(func(ctx context.Context) (*oauth2.Token, error) {
		n := calls.Add(1)
		time.Sleep(delay)
		return &oauth2.Token{AccessToken: "fresh-" + string(rune('0'+n))}, nil
	})
}

func TestHolder_RefreshReplacesToken(t *testing.T) {
	var calls atomic.Int32
	h := NewHolder(StaticToken("old"))

	tok, err := h.Refresh(context.Background(), "old", countingFetcher(&calls, 0))
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", tok.AccessToken)
	assert.Equal(t, "fresh-1", h.AccessToken())
	assert.Equal(t, int32(1), calls.Load())
}

func TestHolder_RefreshSkipsWhenAlreadyReplaced(t *testing.T) {
	var calls atomic.Int32
	h := NewHolder(StaticToken("new"))

	tok, err := h.Refresh(context.Background(), "old", countingFetcher(&calls, 0))
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)
	assert.Equal(t, int32(0), calls.Load())
}

func TestHolder_RefreshFromEmpty(t *testing.T) {
	var calls atomic.Int32
	h := NewHolder(nil)
	assert.Equal(t, "", h.AccessToken())

	_, err := h.Refresh(context.Background(), "", countingFetcher(&calls, 0))
	require.NoError(t, err)
	assert.Equal(t, "fresh-1", h.AccessToken())
}

func TestHolder_FailureKeepsToken(t *testing.T) {
	h := NewHolder(StaticToken("old"))
	boom := errors.CouldNotAuthenticate("", nil)

	_, err := h.Refresh(context.Background(), "old", TokenFetcherFunc(func(context.Context) (*oauth2.Token, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "old", h.AccessToken())
}

func TestHolder_ConcurrentRefreshFetchesOnce(t *testing.T) {
	var calls atomic.Int32
	h := NewHolder(StaticToken("expired"))
	fetcher := countingFetcher(&calls, 20*time.Millisecond)

	var wg sync.WaitGroup
	tokens := make([]string, 16)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := h.Refresh(context.Background(), "expired", fetcher)
			if assert.NoError(t, err) {
				tokens[i] = tok.AccessToken
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, tok := range tokens {
		assert.Equal(t, "fresh-1", tok)
	}
}

func TestHolder_SecondEpisodeFetchesAgain(t *testing.T) {
	var calls atomic.Int32
	h := NewHolder(StaticToken("t0"))
	fetcher := countingFetcher(&calls, 0)

	_, err := h.Refresh(context.Background(), "t0", fetcher)
	require.NoError(t, err)
	_, err = h.Refresh(context.Background(), h.AccessToken(), fetcher)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "fresh-2", h.AccessToken())
}
