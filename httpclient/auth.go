package httpclient

import (
	"encoding/base64"
)

// Header names and media types the SDK sets.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// BearerAuth returns the Authorization value for a bearer token.
// An empty token yields "Bearer ".
func BearerAuth(token string) string {
	return "Bearer " + token
}

// BasicAuth returns the Authorization value for HTTP Basic credentials.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// SetBearer replaces the Authorization header on r.
func (r *Request) SetBearer(token string) {
	r.SetHeader(HeaderAuthorization, BearerAuth(token))
}

// JSONHeaders returns the headers every authenticated platform call starts with.
func JSONHeaders(token string) map[string]string {
	return map[string]string{
		HeaderContentType:   ContentTypeJSON,
		HeaderAuthorization: BearerAuth(token),
	}
}
