package httpclient

import "net/http"

// TokenExpired is the message a Result carries when the platform answered 401.
const TokenExpired = "TOKEN_EXPIRED"

// Outcome classifies one transport execution.
type Outcome int

const (
	// OutcomeSuccess is any 2xx response.
	OutcomeSuccess Outcome = iota
	// OutcomeAuthExpired is exactly a 401 response.
	OutcomeAuthExpired
	// OutcomeFailure is any other status or a network failure.
	OutcomeFailure
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAuthExpired:
		return "auth_expired"
	default:
		return "failure"
	}
}

// Result is the classified response of one execution. A retry produces a
// new Result; Results are never modified after Execute returns them.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Header     http.Header
	Body       []byte
	// JSON is the decoded body, nil when the body was empty.
	JSON map[string]any
	// Err is the failure cause for OutcomeFailure and OutcomeAuthExpired.
	Err error
}

// Succeeded reports whether the platform answered 2xx.
func (r *Result) Succeeded() bool { return r.Outcome == OutcomeSuccess }

// Message returns TokenExpired for an expired-auth result and "" otherwise.
func (r *Result) Message() string {
	if r.Outcome == OutcomeAuthExpired {
		return TokenExpired
	}
	return ""
}
