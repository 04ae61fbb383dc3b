package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindNetworkUnreachable ErrorKind = "network_unreachable"
	KindCorsBlocked        ErrorKind = "cors_blocked"
	KindHTTP               ErrorKind = "http_error"
	KindDecode             ErrorKind = "decode_error"
)

// Kind sentinels, usable with errors.Is. ErrHTTP matches any status.
var (
	ErrTimeout            = &GatewayError{Kind: KindTimeout}
	ErrNetworkUnreachable = &GatewayError{Kind: KindNetworkUnreachable}
	ErrCorsBlocked        = &GatewayError{Kind: KindCorsBlocked}
	ErrHTTP               = &GatewayError{Kind: KindHTTP}
	ErrDecode             = &GatewayError{Kind: KindDecode}
)

var (
	// ErrNoValidatorsFound is returned once every validator listing strategy came back empty or failed.
	ErrNoValidatorsFound = errors.New("no validators found")
	// ErrNoTransactionsFound marks an empty transaction history. It is informational, not a failure.
	ErrNoTransactionsFound = errors.New("no transactions found")
)

// GatewayError is a classified failure of a single gateway call.
type GatewayError struct {
	Kind   ErrorKind
	Status int
	URL    string
	Err    error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if e.URL != "" {
		b.WriteString(" ")
		b.WriteString(e.URL)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is matches on kind, and on status when the target sets one.
func (e *GatewayError) Is(target error) bool {
	t, ok := target.(*GatewayError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

// HTTPStatus returns the status of an HttpError, or 0.
func HTTPStatus(err error) int {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Kind == KindHTTP {
		return gwErr.Status
	}
	return 0
}

// IsNotFound reports whether err is an HttpError(404).
func IsNotFound(err error) bool {
	return HTTPStatus(err) == 404
}

// classifyTransport maps a failed round trip to Timeout or NetworkUnreachable.
func classifyTransport(ctx context.Context, url string, err error) *GatewayError {
	if isTimeout(ctx, err) {
		return &GatewayError{Kind: KindTimeout, URL: url, Err: err}
	}
	return &GatewayError{Kind: KindNetworkUnreachable, URL: url, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Diagnose renders a human readable message for a whole-aggregate failure, naming the likely cause.
func Diagnose(err error, endpoint string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoValidatorsFound):
		return "No validators found on the network. The network may not have active validators yet, " +
			"or the endpoints may be unavailable. Please try again later."
	case errors.Is(err, ErrTimeout):
		return fmt.Sprintf("Connection timeout: the endpoint %s took too long to respond. "+
			"The network may be experiencing issues or the endpoint may be down. Please try again later.", endpoint)
	case errors.Is(err, ErrCorsBlocked):
		return fmt.Sprintf("CORS error: the endpoint %s does not allow cross-origin requests from this origin.", endpoint)
	case errors.Is(err, ErrNetworkUnreachable):
		return fmt.Sprintf("Network error: unable to connect to %s. The endpoint may be temporarily "+
			"unavailable or network connectivity is down.", endpoint)
	case errors.Is(err, ErrHTTP):
		return fmt.Sprintf("The endpoint %s answered with HTTP %d.", endpoint, HTTPStatus(err))
	case errors.Is(err, ErrDecode):
		return fmt.Sprintf("The endpoint %s returned a response that could not be decoded.", endpoint)
	default:
		return fmt.Sprintf("Failed to reach %s: %v", endpoint, err)
	}
}
