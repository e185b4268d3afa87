package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/kbukum/pokitdok/errors"
)

// Request is one outgoing platform request. It is built once per logical
// call; the retry path patches single fields through the setters.
type Request struct {
	method string
	url    string
	header http.Header
	body   []byte
}

// NewRequest builds a request and encodes params according to, in order:
//
//  1. files present: multipart/form-data with a fresh boundary
//  2. GET: params appended to the URL query string, no body
//  3. Content-Type application/json: params as a JSON object
//  4. Content-Type application/x-www-form-urlencoded: params as key=value pairs
//  5. otherwise no body
//
// A file that cannot be read fails with FILE_ENCODING and a value that
// cannot be serialized fails with TO_JSON; no request is returned in
// either case.
func NewRequest(rawURL, method string, headers map[string]string, params Params, files []FilePart) (*Request, error) {
	r := &Request{
		method: strings.ToUpper(method),
		url:    rawURL,
		header: make(http.Header, len(headers)+1),
	}
	for k, v := range headers {
		r.header.Set(k, v)
	}

	switch {
	case len(files) > 0:
		boundary := newBoundary()
		body, err := encodeMultipart(boundary, params, files)
		if err != nil {
			return nil, err
		}
		r.header.Set(HeaderContentType, "multipart/form-data; boundary="+boundary)
		r.body = body

	case r.method == http.MethodGet:
		if len(params) > 0 {
			query, err := params.Encode()
			if err != nil {
				return nil, errors.ToJSON(err)
			}
			r.url = appendQuery(r.url, query)
		}

	case len(params) == 0:
		// nothing to encode

	default:
		switch mediaType(r.header.Get(HeaderContentType)) {
		case ContentTypeJSON:
			body, err := params.MarshalJSON()
			if err != nil {
				return nil, errors.ToJSON(err)
			}
			r.body = body
		case ContentTypeForm:
			form, err := params.Encode()
			if err != nil {
				return nil, errors.ToJSON(err)
			}
			r.body = []byte(form)
		}
	}

	return r, nil
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// SetMethod replaces the HTTP method.
func (r *Request) SetMethod(method string) { r.method = strings.ToUpper(method) }

// URL returns the absolute URL including any encoded query.
func (r *Request) URL() string { return r.url }

// SetURL replaces the URL.
func (r *Request) SetURL(u string) { r.url = u }

// Header returns the value of a header, matched case-insensitively.
func (r *Request) Header(key string) string { return r.header.Get(key) }

// SetHeader replaces a header value.
func (r *Request) SetHeader(key, value string) { r.header.Set(key, value) }

// Headers returns a copy of all headers.
func (r *Request) Headers() http.Header { return r.header.Clone() }

// Body returns the encoded body, nil when the request has none.
func (r *Request) Body() []byte { return r.body }

// SetBody replaces the body.
func (r *Request) SetBody(body []byte) { r.body = body }

// HTTPRequest materializes a fresh *http.Request. Each call produces a new
// body reader so the same Request can be sent more than once.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, errors.ConnectionFailed(err)
	}
	req.Header = r.header.Clone()
	return req, nil
}

// appendQuery joins query onto rawURL with '?' or, when rawURL already
// carries a query, '&'.
func appendQuery(rawURL, query string) string {
	if query == "" {
		return rawURL
	}
	switch {
	case !strings.Contains(rawURL, "?"):
		return rawURL + "?" + query
	case strings.HasSuffix(rawURL, "?"), strings.HasSuffix(rawURL, "&"):
		return rawURL + query
	default:
		return rawURL + "&" + query
	}
}

// mediaType returns the lower-cased media type of a Content-Type value
// without its parameters.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
