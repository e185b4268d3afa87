// Package resilience paces outgoing platform requests with a token
// bucket so a busy client stays under the platform's rate limits
// instead of collecting 429 responses.
package resilience
