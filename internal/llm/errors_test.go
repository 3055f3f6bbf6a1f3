package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyStatusCodes(t *testing.T) {
	cases := []struct {
		code int
		kind GatewayErrorKind
		msg  string
	}{
		{401, KindUnauthorized, MsgUnauthorized},
		{429, KindRateLimited, MsgRateLimited},
		{500, KindUnavailable, MsgUnavailable},
		{503, KindUnavailable, MsgUnavailable},
		{400, KindConnect, MsgConnect},
		{404, KindConnect, MsgConnect},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.code), func(t *testing.T) {
			err := fmt.Errorf("chat: %w", &StatusError{Provider: "openai", StatusCode: tc.code, Body: "boom"})
			got := Classify(err)
			require.Equal(t, tc.kind, got.Kind)
			require.Equal(t, tc.msg, got.Message)
			require.Equal(t, tc.code, got.StatusCode)
			require.Contains(t, got.Details, fmt.Sprintf("Status Code: %d, ", tc.code))
			require.Contains(t, got.Details, "boom")
		})
	}
}

func TestClassifyNetworkErrors(t *testing.T) {
	dns := &net.DNSError{Err: "no such host", Name: "api.invalid", IsNotFound: true}
	got := Classify(fmt.Errorf("send request: %w", dns))
	require.Equal(t, KindNetwork, got.Kind)
	require.Equal(t, MsgNetwork, got.Message)
	require.Contains(t, got.Details, "no such host")

	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	require.Equal(t, MsgNetwork, Classify(dial).Message)
}

func TestClassifyMalformedAndOther(t *testing.T) {
	got := Classify(fmt.Errorf("%w: no choices", ErrMalformedResponse))
	require.Equal(t, KindMalformed, got.Kind)
	require.Equal(t, MsgMalformed, got.Message)

	got = Classify(fmt.Errorf("send request: %w", context.DeadlineExceeded))
	require.Equal(t, MsgConnect, got.Message)
	require.Zero(t, got.StatusCode)
	require.Contains(t, got.Details, "deadline exceeded")

	require.Nil(t, Classify(nil))
}

func TestClassifyIsIdempotent(t *testing.T) {
	first := Classify(&StatusError{StatusCode: 429})
	require.Same(t, first, Classify(fmt.Errorf("wrapped: %w", first)))
	require.ErrorIs(t, first, first.Err)
}
