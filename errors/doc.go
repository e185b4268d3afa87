// Package errors provides the structured error type returned by every
// SDK operation. Each error carries a machine-readable code and the kind
// it belongs to (data conversion, authentication, transport or
// configuration) so callers can branch with KindOf or HasCode instead of
// matching message strings.
package errors
