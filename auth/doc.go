// Package auth obtains and holds the SDK's OAuth2 access token.
//
// ClientCredentials fetches tokens with the client-credentials grant
// (HTTP Basic client authentication, form body
// grant_type=client_credentials). Holder owns the current token and
// collapses concurrent refreshes of the same expired token into one fetch.
package auth
