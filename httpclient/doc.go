// Package httpclient builds and executes the SDK's platform requests.
//
// NewRequest turns a URL, method, headers, ordered Params and optional
// FileParts into a Request, choosing exactly one body encoding:
// multipart when files are attached, the query string for GET, a JSON
// object or a form body according to Content-Type, or no body.
//
// A Transport executes a Request synchronously and classifies the
// response as OutcomeSuccess (2xx), OutcomeAuthExpired (401) or
// OutcomeFailure, decoding a JSON object body when one is present.
//
//	params := httpclient.Params{{Key: "trading_partner_id", Value: httpclient.StringValue("MOCKPAYER")}}
//	req, err := httpclient.NewRequest(url, http.MethodGet, httpclient.JSONHeaders(token), params, nil)
//	if err != nil { ... }
//	res, err := httpclient.NewHTTPTransport().Execute(ctx, req)
package httpclient
