// Package rpc holds the wire messages shared by the daemon transports and the CLI.
package rpc

import (
	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

// Event types emitted on job streams.
const (
	EventStarted = "started"
	EventBatch   = "batch"
	EventResult  = "result"
	EventError   = "error"
)

// RunRequest starts a job. Archive travels base64 encoded in JSON.
type RunRequest struct {
	Job     string `json:"job,omitempty"` // analysis|report|migration
	Archive []byte `json:"archive,omitempty"`
	RepoURL string `json:"repo_url,omitempty"`
	// Filter=false lists the archive's files without calling the AI service.
	Filter *bool `json:"filter,omitempty"`
}

// ServiceRequest converts the wire request.
func (r RunRequest) ServiceRequest() service.Request {
	return service.Request{
		Job:      r.Job,
		Archive:  r.Archive,
		RepoURL:  r.RepoURL,
		ListOnly: r.Filter != nil && !*r.Filter,
	}
}

// JobEvent streams progress of one job back to the caller.
type JobEvent struct {
	Type   string               `json:"type"` // started|batch|result|error
	Batch  *pipeline.BatchEvent `json:"batch,omitempty"`
	Status int                  `json:"status,omitempty"`
	Result *service.Response    `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}
