package jobs

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bufbuild/connect-go"

	"github.com/yash23jamak/LegacyLift-B/internal/observability"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc/connectjson"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

const (
	ConnectRunProcedure       = "/legacylift.v1.PipelineService/Run"
	ConnectRunStreamProcedure = "/legacylift.v1.PipelineService/RunStream"
)

// StatusHeader carries the HTTP-equivalent status of a Connect response.
const StatusHeader = "X-Legacylift-Status"

// NewConnectHandler builds the unary Run handler.
func NewConnectHandler(svc Service, metrics *observability.Metrics) (string, http.Handler) {
	h := &connectRunHandler{svc: svc, metrics: metrics}
	return ConnectRunProcedure, connect.NewUnaryHandler(ConnectRunProcedure, h.handle, connect.WithCodec(connectjson.Codec{}))
}

// NewConnectStreamHandler builds the server-stream RunStream handler.
func NewConnectStreamHandler(runner Runner, metrics *observability.Metrics) (string, http.Handler) {
	h := &connectStreamHandler{runner: runner, metrics: metrics}
	return ConnectRunStreamProcedure, connect.NewServerStreamHandler(ConnectRunStreamProcedure, h.handle, connect.WithCodec(connectjson.Codec{}))
}

type connectRunHandler struct {
	svc     Service
	metrics *observability.Metrics
}

func (h *connectRunHandler) handle(ctx context.Context, req *connect.Request[rpc.RunRequest]) (*connect.Response[service.Response], error) {
	defer h.metrics.TrackJob("connect")()

	status, resp := h.svc.Handle(ctx, req.Msg.ServiceRequest(), nil)
	if code, ok := codeForStatus(status); ok {
		return nil, connect.NewError(code, errors.New(resp.Error))
	}
	res := connect.NewResponse(&resp)
	res.Header().Set(StatusHeader, strconv.Itoa(status))
	return res, nil
}

type connectStreamHandler struct {
	runner  Runner
	metrics *observability.Metrics
}

func (h *connectStreamHandler) handle(ctx context.Context, req *connect.Request[rpc.RunRequest], stream *connect.ServerStream[rpc.JobEvent]) error {
	defer h.metrics.TrackJob("connect")()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := h.runner.Run(ctx, *req.Msg)
	if err != nil {
		h.metrics.RecordTransportError("connect", "runner_error")
		return connect.NewError(connect.CodeInternal, err)
	}
	for ev := range events {
		if err := stream.Send(&ev); err != nil {
			h.metrics.RecordTransportError("connect", "send")
			return err
		}
	}
	return nil
}

// codeForStatus maps statuses without a classified outcome to Connect codes.
// Classified outcomes, including 502s, travel as regular responses.
func codeForStatus(status int) (connect.Code, bool) {
	switch status {
	case http.StatusBadRequest:
		return connect.CodeInvalidArgument, true
	case service.StatusClientClosedRequest:
		return connect.CodeCanceled, true
	case http.StatusInternalServerError:
		return connect.CodeInternal, true
	}
	return 0, false
}

func statusForCode(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeCanceled:
		return service.StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}
