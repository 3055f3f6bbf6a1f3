package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yash23jamak/LegacyLift-B/internal/service"
)

const (
	uploadField    = "folder"
	filterField    = "filterZip"
	repoURLField   = "repoUrl"
	multipartInMem = 32 << 20
)

const (
	msgNoUpload = "No ZIP file uploaded"
	msgNoInput  = "Please provide a ZIP file or repository URL"
)

var errNoUpload = errors.New("no zip upload")

type errorBody struct {
	Error string `json:"error"`
}

// analyzeProjectHandler accepts a multipart upload (folder, filterZip) or a
// repository URL (multipart/form field or JSON body).
func (s *Server) analyzeProjectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := service.Request{Job: "analysis"}
	if isJSON(r) {
		var body struct {
			RepoURL string `json:"repoUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
			return
		}
		req.RepoURL = body.RepoURL
	} else {
		archive, err := s.readUpload(r)
		switch {
		case errors.Is(err, errNoUpload):
		case err != nil:
			s.writeUploadError(w, err)
			return
		}
		req.Archive = archive
		req.RepoURL = r.FormValue(repoURLField)
		req.ListOnly = strings.EqualFold(strings.TrimSpace(r.FormValue(filterField)), "false")
	}

	if len(req.Archive) == 0 && strings.TrimSpace(req.RepoURL) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgNoInput})
		return
	}
	s.respond(w, r, req)
}

// archiveJobHandler serves routes that take a multipart zip upload only.
func (s *Server) archiveJobHandler(job string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		archive, err := s.readUpload(r)
		if err != nil {
			s.writeUploadError(w, err)
			return
		}
		s.respond(w, r, service.Request{Job: job, Archive: archive})
	}
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, req service.Request) {
	status, resp := s.service.Handle(r.Context(), req, nil)
	if status >= http.StatusInternalServerError && resp.Outcome == "" {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.String("error", resp.Error))
	}
	writeJSON(w, status, resp)
}

// readUpload returns the bytes of the "folder" multipart field.
func (s *Server) readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(multipartInMem); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoUpload
		}
		return nil, err
	}
	file, _, err := r.FormFile(uploadField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, errNoUpload
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		s.metrics.RecordTransportError("http", "upload_too_large")
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload exceeds the configured size limit"})
	case errors.Is(err, errNoUpload):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgNoUpload})
	default:
		s.metrics.RecordTransportError("http", "upload")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid upload: " + err.Error()})
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
