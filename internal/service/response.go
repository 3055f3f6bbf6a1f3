package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/yash23jamak/LegacyLift-B/internal/batch"
	"github.com/yash23jamak/LegacyLift-B/internal/decode"
	"github.com/yash23jamak/LegacyLift-B/internal/pipeline"
	"github.com/yash23jamak/LegacyLift-B/internal/prompt"
)

// ErrInvalidRequest marks malformed transport requests.
var ErrInvalidRequest = errors.New("invalid request")

// Source names where the files came from; it only affects messages.
type Source string

const (
	SourceArchive Source = "archive"
	SourceRepo    Source = "repo"
)

// Response is the caller-facing body. Report carries analysis and report
// units, Files carries migration units or an archive listing.
type Response struct {
	Status  int                   `json:"status"`
	Message string                `json:"message,omitempty"`
	Outcome string                `json:"outcome,omitempty"`
	RunID   string                `json:"run_id,omitempty"`
	Report  any                   `json:"report,omitempty"`
	Files   any                   `json:"files,omitempty"`
	Errors  []pipeline.FailedUnit `json:"errors,omitempty"`
	Error   string                `json:"error,omitempty"`
	Details string                `json:"details,omitempty"`
}

// Respond maps an outcome to an HTTP status and body.
//
//	success          200 with results
//	empty_result     200 with an empty result list
//	partial_failure  502 with results and the failed units
//	upstream_failure 502 with the gateway message and details
func Respond(kind prompt.Kind, source Source, out pipeline.Outcome) (int, Response) {
	resp := Response{Outcome: string(out.Kind), RunID: out.RunID}

	switch out.Kind {
	case pipeline.OutcomeUpstreamFailure:
		resp.Status = http.StatusBadGateway
		resp.Message = failureMessage(kind)
		if out.Gateway != nil {
			resp.Error = out.Gateway.Message
			resp.Details = out.Gateway.Details
		}
		return resp.Status, resp
	case pipeline.OutcomePartialFailure:
		resp.Status = http.StatusBadGateway
		resp.Message = failureMessage(kind)
		resp.Errors = out.Failed
		resp.Error = out.Failed[0].Error
	case pipeline.OutcomeEmptyResult:
		resp.Status = http.StatusOK
		resp.Message = "AI service returned no results"
	default:
		resp.Status = http.StatusOK
		resp.Message = successMessage(kind, source)
	}

	units := out.Units
	if units == nil {
		units = []decode.Unit{}
	}
	if kind == prompt.Migration {
		resp.Files = units
	} else {
		resp.Report = units
	}
	return resp.Status, resp
}

// RespondListing wraps an archive listing.
func RespondListing(files []batch.SourceFile) (int, Response) {
	return http.StatusOK, Response{
		Status:  http.StatusOK,
		Message: "ZIP file extracted successfully",
		Outcome: string(pipeline.OutcomeSuccess),
		Files:   files,
	}
}

// RespondError maps an error to 400 for caller input problems, 499 for
// cancellation and 500 for everything else. Internal errors expose only
// their message.
func RespondError(err error) (int, Response) {
	status := http.StatusInternalServerError
	switch {
	case pipeline.IsInputError(err), errors.Is(err, ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		status = StatusClientClosedRequest
	}
	return status, Response{Status: status, Error: err.Error()}
}

// StatusClientClosedRequest is reported when the caller went away mid-run.
const StatusClientClosedRequest = 499

func successMessage(kind prompt.Kind, source Source) string {
	switch kind {
	case prompt.MigrationReport:
		return "Migration report generated successfully"
	case prompt.Migration:
		return "Migration analysis completed successfully"
	}
	if source == SourceRepo {
		return "Repository analyzed successfully"
	}
	return "ZIP file analyzed successfully"
}

func failureMessage(kind prompt.Kind) string {
	switch kind {
	case prompt.MigrationReport:
		return "AI service failed during migration report generation"
	case prompt.Migration:
		return "AI service failed during migration analysis"
	default:
		return "AI service failed during project analysis"
	}
}
