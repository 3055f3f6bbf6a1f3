package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/decode"
	"github.com/yash23jamak/LegacyLift-B/internal/llm"
	"github.com/yash23jamak/LegacyLift-B/internal/logging"
	"github.com/yash23jamak/LegacyLift-B/internal/observability"
	"github.com/yash23jamak/LegacyLift-B/internal/prompt"
)

// Job is one unit of work: a prompt kind applied to an ordered file list.
type Job struct {
	Kind  prompt.Kind
	Files []batch.SourceFile
}

// BatchEvent reports a finished batch. Err is set when the gateway failed.
type BatchEvent struct {
	RunID    string            `json:"run_id"`
	Batch    int               `json:"batch"`
	Batches  int               `json:"batches"`
	Files    []string          `json:"files"`
	Units    []decode.Unit     `json:"units,omitempty"`
	Failures int               `json:"failures"`
	Err      *llm.GatewayError `json:"gateway_error,omitempty"`
}

// Observer receives batch events. Calls are serialized but arrive in
// completion order, which differs from batch order when Concurrency > 1.
type Observer func(BatchEvent)

// Runner drives a job through batching, the gateway and decoding.
type Runner struct {
	Gateway Gateway
	Batch   batch.Options
	// Concurrency bounds in-flight gateway calls; values below 1 mean sequential.
	Concurrency int
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Observer    Observer
}

type slot struct {
	attempted bool
	done      bool
	units     []decode.Unit
	err       *llm.GatewayError
}

// Run executes the job. Input errors are returned before any gateway call.
// A gateway failure stops dispatch of later batches. Earlier batches, whether
// in flight or queued behind the concurrency limit, still run, and the
// failure with the lowest batch index is reported. Caller cancellation stops
// dispatch and returns ctx.Err().
func (r *Runner) Run(ctx context.Context, job Job) (Outcome, error) {
	batches, err := batch.Split(job.Files, r.Batch)
	if err != nil {
		return Outcome{State: StatePending, GatewayBatch: -1}, err
	}

	runID := uuid.NewString()
	jobName := string(job.Kind)
	role := job.Kind.Role()
	logger := logging.OrNop(r.Logger).With(zap.String("run_id", runID), zap.String("job", jobName))
	started := time.Now()

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}
	logger.Info("run started", zap.Int("files", len(job.Files)), zap.Int("batches", len(batches)), zap.Int("concurrency", limit))

	slots := make([]slot, len(batches))
	var (
		// failAt is the lowest batch index whose gateway call failed, or
		// len(batches) while none has.
		failAt atomic.Int64
		emitMu sync.Mutex
		g      errgroup.Group
	)
	failAt.Store(int64(len(batches)))
	g.SetLimit(limit)

	// Only batches after the lowest failure are skipped.
	skip := func(i int) bool {
		return int64(i) > failAt.Load() || ctx.Err() != nil
	}
	markFailed := func(i int) {
		for {
			cur := failAt.Load()
			if int64(i) >= cur || failAt.CompareAndSwap(cur, int64(i)) {
				return
			}
		}
	}

	emit := func(ev BatchEvent) {
		if r.Observer == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		r.Observer(ev)
	}

	for i := range batches {
		if skip(i) {
			break
		}
		b := batches[i]
		g.Go(func() error {
			// Rechecked after the slot wait: with one slot a failure is always
			// recorded before the next batch gets here.
			if skip(b.Index) {
				return nil
			}
			s := &slots[b.Index]
			s.attempted = true
			r.Metrics.RecordBatch(jobName)

			text, err := r.Gateway.Complete(ctx, prompt.Build(job.Kind, b), role)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.err = llm.Classify(err)
				markFailed(b.Index)
				logger.Warn("batch aborted run", zap.Int("batch", b.Index), zap.String("kind", string(s.err.Kind)), zap.String("details", s.err.Details))
				emit(BatchEvent{RunID: runID, Batch: b.Index, Batches: len(batches), Files: fileNames(b.Files), Err: s.err})
				return s.err
			}

			s.units = decode.Decode(text)
			s.done = true
			failures := countFailures(s.units)
			r.Metrics.RecordDecodeFailures(jobName, failures)
			logger.Debug("batch completed", zap.Int("batch", b.Index), zap.Int("units", len(s.units)), zap.Int("failures", failures))
			emit(BatchEvent{RunID: runID, Batch: b.Index, Batches: len(batches), Files: fileNames(b.Files), Units: s.units, Failures: failures})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Info("run cancelled", zap.Error(err))
		r.Metrics.RecordRun(jobName, "cancelled", time.Since(started))
		return Outcome{State: StateRunning, RunID: runID, Batches: len(batches), GatewayBatch: -1}, err
	}

	state := StateCompleted
	var (
		gwErr     *llm.GatewayError
		gwBatch   = -1
		results   = make([]BatchResult, 0, len(slots))
		attempted int
	)
	for i, s := range slots {
		if s.attempted {
			attempted++
		}
		if s.err != nil && gwErr == nil {
			state, gwErr, gwBatch = StateAborted, s.err, i
		}
		if s.done {
			results = append(results, BatchResult{Index: i, Units: s.units})
		}
	}
	if state == StateCompleted && attempted != len(slots) {
		return Outcome{}, errors.New("pipeline: run ended with undispatched batches")
	}

	out := Classify(state, results, gwErr)
	out.RunID = runID
	out.Batches = len(batches)
	out.Attempted = attempted
	out.GatewayBatch = gwBatch

	r.Metrics.RecordRun(jobName, string(out.Kind), time.Since(started))
	logger.Info("run finished",
		zap.String("outcome", string(out.Kind)),
		zap.Int("attempted", attempted),
		zap.Int("units", len(out.Units)),
		zap.Int("failures", len(out.Failed)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return out, nil
}

func fileNames(files []batch.SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func countFailures(units []decode.Unit) int {
	n := 0
	for _, u := range units {
		if u.IsFailure() {
			n++
		}
	}
	return n
}
