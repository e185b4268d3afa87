package httpclient

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/kbukum/pokitdok/errors"
)

// ClassifyStatusCode maps an HTTP status onto an Outcome and, for anything
// but 2xx, the error describing it.
func ClassifyStatusCode(statusCode int, body []byte) (Outcome, error) {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess, nil
	case statusCode == http.StatusUnauthorized:
		return OutcomeAuthExpired, errors.TokenExpired()
	default:
		return OutcomeFailure, errors.UnexpectedStatus(statusCode, body)
	}
}

// classifyNetworkError wraps a failed round trip as TIMEOUT or
// CONNECTION_FAILED.
func classifyNetworkError(ctx context.Context, err error) *errors.AppError {
	if ctx.Err() != nil || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout(err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(err)
	}
	return errors.ConnectionFailed(err)
}
