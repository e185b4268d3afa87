// Package session is the generic entry point for platform calls.
//
// A Session resolves paths against <base_path>/api/<version>, sends each
// request with the current bearer token and, when AutoRefresh is set,
// answers a 401 by refreshing the token once and resending the same
// request exactly once. The token is shared by concurrent callers; those
// that saw the same expired token share a single refresh.
//
//	s, err := session.New(ctx, session.Config{
//	    ClientID:     id,
//	    ClientSecret: secret,
//	    AutoRefresh:  true,
//	})
//	if err != nil { ... }
//	body, err := s.Get(ctx, "/payers/", nil)
package session
