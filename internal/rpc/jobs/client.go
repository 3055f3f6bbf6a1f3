package jobs

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/bufbuild/connect-go"
	"golang.org/x/net/http2"

	"github.com/yash23jamak/LegacyLift-B/internal/rpc"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc/connectjson"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

// maxEventBytes bounds a single NDJSON line; results carry whole files.
const maxEventBytes = 64 << 20

// Client submits jobs to a running daemon.
type Client struct {
	BaseURL string
	// Transport is connect (default) or ndjson.
	Transport  string
	HTTPClient *http.Client
}

// NewClient builds a client for the daemon at addr (":8080", "host:port" or a URL).
func NewClient(addr, transport string) *Client {
	c := &Client{BaseURL: DaemonURL(addr), Transport: strings.ToLower(strings.TrimSpace(transport))}
	if c.Transport == "ndjson" {
		c.HTTPClient = &http.Client{}
	} else {
		c.HTTPClient = buildH2CClient()
	}
	return c
}

// DaemonURL turns a listen address into a base URL.
func DaemonURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// Run submits req and waits for the final response. onEvent, when set,
// receives batch events as they arrive. The returned error covers transport
// failures only; job failures are reported through the status and Response.
func (c *Client) Run(ctx context.Context, req rpc.RunRequest, onEvent func(rpc.JobEvent)) (int, service.Response, error) {
	switch {
	case c.Transport == "ndjson":
		return c.runNDJSON(ctx, req, onEvent)
	case onEvent != nil:
		return c.runConnectStream(ctx, req, onEvent)
	default:
		return c.runConnect(ctx, req)
	}
}

func (c *Client) runNDJSON(ctx context.Context, reqBody rpc.RunRequest, onEvent func(rpc.JobEvent)) (int, service.Response, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return 0, service.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+StreamPath, bytes.NewReader(data))
	if err != nil {
		return 0, service.Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, service.Response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, service.Response{}, fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventBytes)
	for scanner.Scan() {
		var evt rpc.JobEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			return 0, service.Response{}, fmt.Errorf("decode event: %w", err)
		}
		if status, result, done := c.observe(evt, onEvent); done {
			return status, result, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, service.Response{}, err
	}
	return 0, service.Response{}, errors.New("stream ended without a result")
}

func (c *Client) runConnect(ctx context.Context, req rpc.RunRequest) (int, service.Response, error) {
	client := connect.NewClient[rpc.RunRequest, service.Response](c.HTTPClient, c.BaseURL+ConnectRunProcedure, connect.WithCodec(connectjson.Codec{}))
	res, err := client.CallUnary(ctx, connect.NewRequest(&req))
	if err != nil {
		return fromConnectError(err)
	}
	status, convErr := strconv.Atoi(res.Header().Get(StatusHeader))
	if convErr != nil {
		status = res.Msg.Status
	}
	return status, *res.Msg, nil
}

func (c *Client) runConnectStream(ctx context.Context, req rpc.RunRequest, onEvent func(rpc.JobEvent)) (int, service.Response, error) {
	client := connect.NewClient[rpc.RunRequest, rpc.JobEvent](c.HTTPClient, c.BaseURL+ConnectRunStreamProcedure, connect.WithCodec(connectjson.Codec{}))
	stream, err := client.CallServerStream(ctx, connect.NewRequest(&req))
	if err != nil {
		return fromConnectError(err)
	}
	defer stream.Close()

	for stream.Receive() {
		if status, result, done := c.observe(*stream.Msg(), onEvent); done {
			return status, result, nil
		}
	}
	if err := stream.Err(); err != nil {
		return fromConnectError(err)
	}
	return 0, service.Response{}, errors.New("stream ended without a result")
}

// observe forwards progress events and reports the terminal one.
func (c *Client) observe(evt rpc.JobEvent, onEvent func(rpc.JobEvent)) (int, service.Response, bool) {
	switch evt.Type {
	case rpc.EventResult, rpc.EventError:
		var result service.Response
		if evt.Result != nil {
			result = *evt.Result
		} else {
			result = service.Response{Status: evt.Status, Error: evt.Error}
		}
		return evt.Status, result, true
	}
	if onEvent != nil {
		onEvent(evt)
	}
	return 0, service.Response{}, false
}

// fromConnectError turns job rejections back into statuses; anything that is
// not a Connect error is a transport failure.
func fromConnectError(err error) (int, service.Response, error) {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Code() == connect.CodeUnavailable || connectErr.Code() == connect.CodeUnknown {
		return 0, service.Response{}, err
	}
	status := statusForCode(connectErr.Code())
	return status, service.Response{Status: status, Error: connectErr.Message()}, nil
}

func buildH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}
