// Package jobs exposes pipeline jobs over Connect and NDJSON and provides the
// matching client.
package jobs

import (
	"context"
	"errors"

	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/rpc"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

// Service executes one job synchronously.
type Service interface {
	Handle(ctx context.Context, req service.Request, obs pipeline.Observer) (int, service.Response)
}

// Runner executes a job and yields streamed events. The channel is closed
// after the final result or error event, or when ctx is done.
type Runner interface {
	Run(ctx context.Context, req rpc.RunRequest) (<-chan rpc.JobEvent, error)
}

// ServiceRunner adapts a Service to a Runner.
type ServiceRunner struct {
	Service Service
}

// Run starts the job in the background.
func (r *ServiceRunner) Run(ctx context.Context, req rpc.RunRequest) (<-chan rpc.JobEvent, error) {
	if r == nil || r.Service == nil {
		return nil, errors.New("jobs: no service configured")
	}

	out := make(chan rpc.JobEvent, 16)
	go func() {
		defer close(out)
		send := func(ev rpc.JobEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(rpc.JobEvent{Type: rpc.EventStarted}) {
			return
		}
		status, resp := r.Service.Handle(ctx, req.ServiceRequest(), func(ev pipeline.BatchEvent) {
			send(rpc.JobEvent{Type: rpc.EventBatch, Batch: &ev})
		})
		send(finalEvent(status, resp))
	}()
	return out, nil
}

// finalEvent is a result for classified outcomes and an error otherwise.
func finalEvent(status int, resp service.Response) rpc.JobEvent {
	ev := rpc.JobEvent{Type: rpc.EventResult, Status: status, Result: &resp}
	if resp.Outcome == "" {
		ev.Type = rpc.EventError
		ev.Error = resp.Error
	}
	return ev
}
