package reliability

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Upstream failure classes used as bounded metric labels.
const (
	ClassTimeout     = "timeout"
	ClassCanceled    = "canceled"
	ClassTransport   = "transport"
	ClassRateLimited = "rate_limited"
	ClassClient      = "client_error"
	ClassServer      = "server_error"
)

// ClassifyHTTPStatus maps a non-2xx vendor status to a failure class.
func ClassifyHTTPStatus(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return ClassRateLimited
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ClassTimeout
	case code >= 500:
		return ClassServer
	default:
		return ClassClient
	}
}

// ClassifyTransportError maps an error that produced no vendor status.
func ClassifyTransportError(err error) string {
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	return ClassTransport
}
