package pipeline

import (
	"errors"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/collector"
	"github.com/yash23jamak/LegacyLift-B/internal/decode"
	"github.com/yash23jamak/LegacyLift-B/internal/llm"
)

// RunState is the aggregator state.
type RunState string

const (
	StatePending   RunState = "pending"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateAborted   RunState = "aborted_on_gateway_failure"
)

// OutcomeKind is the caller-facing classification of a run.
type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeUpstreamFailure OutcomeKind = "upstream_failure"
	OutcomeEmptyResult     OutcomeKind = "empty_result"
	OutcomePartialFailure  OutcomeKind = "partial_failure"
)

// BatchResult holds the decoded units of one completed batch.
type BatchResult struct {
	Index int
	Units []decode.Unit
}

// FailedUnit locates a decode failure in the accumulator.
type FailedUnit struct {
	Index int `json:"index"`
	Batch int `json:"batch"`
	decode.Failure
}

// Outcome is the final result of a run.
type Outcome struct {
	Kind  OutcomeKind
	State RunState
	RunID string
	// Units is the accumulator in batch order. Empty for upstream failures.
	Units  []decode.Unit
	Failed []FailedUnit
	// Gateway is set for upstream failures; GatewayBatch is its batch index.
	Gateway      *llm.GatewayError
	GatewayBatch int
	Batches      int
	Attempted    int
}

// Classify maps the terminal aggregator state to an outcome. Results must be
// in batch order.
func Classify(state RunState, results []BatchResult, gwErr *llm.GatewayError) Outcome {
	out := Outcome{State: state, GatewayBatch: -1}
	if state == StateAborted {
		out.Kind = OutcomeUpstreamFailure
		out.Gateway = gwErr
		return out
	}

	for _, r := range results {
		for _, u := range r.Units {
			if u.IsFailure() {
				out.Failed = append(out.Failed, FailedUnit{Index: len(out.Units), Batch: r.Index, Failure: *u.Failure})
			}
			out.Units = append(out.Units, u)
		}
	}

	switch {
	case len(out.Units) == 0:
		out.Kind = OutcomeEmptyResult
	case len(out.Failed) > 0:
		out.Kind = OutcomePartialFailure
	default:
		out.Kind = OutcomeSuccess
	}
	return out
}

// FailedBatches returns the distinct batch indices that produced decode failures.
func (o Outcome) FailedBatches() []int {
	var out []int
	for _, f := range o.Failed {
		if len(out) == 0 || out[len(out)-1] != f.Batch {
			out = append(out, f.Batch)
		}
	}
	return out
}

// IsInputError reports whether err was caused by unusable caller input.
func IsInputError(err error) bool {
	for _, target := range []error{
		batch.ErrEmptyInput,
		collector.ErrNoFiles,
		collector.ErrNoJSP,
		collector.ErrUnsupportedArchive,
		collector.ErrInvalidRepoURL,
		collector.ErrArchiveTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
