package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrMalformedResponse marks a reply whose envelope lacks the consumed fields
// (choices[0].message) or is not JSON at all.
var ErrMalformedResponse = errors.New("malformed response envelope")

// StatusError is returned by providers for non-2xx HTTP replies.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// GatewayErrorKind names a class of gateway failure.
type GatewayErrorKind string

const (
	KindUnauthorized GatewayErrorKind = "unauthorized"
	KindRateLimited  GatewayErrorKind = "rate_limited"
	KindUnavailable  GatewayErrorKind = "unavailable"
	KindNetwork      GatewayErrorKind = "network"
	KindMalformed    GatewayErrorKind = "malformed_response"
	KindConnect      GatewayErrorKind = "connect"
)

// Caller-facing gateway messages.
const (
	MsgUnauthorized = "Unauthorized: Invalid API key."
	MsgRateLimited  = "Rate limit reached. Please try again later."
	MsgUnavailable  = "AI service is currently unavailable."
	MsgNetwork      = "Network error: Unable to reach AI service."
	MsgMalformed    = "Invalid response from AI service."
	MsgConnect      = "Failed to connect to AI service."
)

// GatewayError is a normalized, caller-facing gateway failure. Message is one
// of the fixed Msg* strings; Details preserves the underlying error text and,
// when known, the HTTP status.
type GatewayError struct {
	Kind       GatewayErrorKind `json:"kind"`
	Message    string           `json:"error"`
	Details    string           `json:"details"`
	StatusCode int              `json:"status_code,omitempty"`
	Err        error            `json:"-"`
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Classify maps any gateway error to a GatewayError. A nil error yields nil.
func Classify(err error) *GatewayError {
	if err == nil {
		return nil
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	out := &GatewayError{Kind: KindConnect, Message: MsgConnect, Details: err.Error(), Err: err}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		out.StatusCode = code
		out.Details = fmt.Sprintf("Status Code: %d, %s", code, err.Error())
		switch {
		case code == http.StatusUnauthorized:
			out.Kind, out.Message = KindUnauthorized, MsgUnauthorized
		case code == http.StatusTooManyRequests:
			out.Kind, out.Message = KindRateLimited, MsgRateLimited
		case code >= http.StatusInternalServerError:
			out.Kind, out.Message = KindUnavailable, MsgUnavailable
		}
		return out
	}

	if errors.Is(err, ErrMalformedResponse) {
		out.Kind, out.Message = KindMalformed, MsgMalformed
		return out
	}

	// Deadlines are transport failures, not unreachable hosts.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return out
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		out.Kind, out.Message = KindNetwork, MsgNetwork
		return out
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
		out.Kind, out.Message = KindNetwork, MsgNetwork
		return out
	}
	return out
}
