package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/matzehuels/flowdot/pkg/buildinfo"
	apperrors "github.com/matzehuels/flowdot/pkg/errors"
	pkgio "github.com/matzehuels/flowdot/pkg/io"
	"github.com/matzehuels/flowdot/pkg/pipeline"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// ContentTypeDOT is the media type of raw DOT responses.
const ContentTypeDOT = "text/vnd.graphviz"

// Response is the JSON envelope of every endpoint.
type Response struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
}

// Error contains error details.
type Error struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// RenderRequest is the body of POST /api/v1/render.
type RenderRequest struct {
	Workflow json.RawMessage  `json:"workflow"`
	States   json.RawMessage  `json:"states,omitempty"`
	Options  pipeline.Options `json:"options"`
}

// DependenciesRequest is the body of POST /api/v1/dependencies.
type DependenciesRequest struct {
	Dependencies json.RawMessage  `json:"dependencies"`
	Options      pipeline.Options `json:"options"`
}

// RenderResponse is the data of a successful render.
type RenderResponse struct {
	DOT    string         `json:"dot"`
	Hash   string         `json:"hash"`
	Cached bool           `json:"cached"`
	Stats  pipeline.Stats `json:"stats"`
}

// HealthResponse is the data of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeErrorStatus(w, r, http.StatusNotFound,
		apperrors.New(apperrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if isEmpty(req.Workflow) {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "workflow is required"))
		return
	}
	wf, err := pkgio.ReadWorkflow(bytes.NewReader(req.Workflow), pkgio.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wf.ID != "" {
		if err := apperrors.ValidateID("workflow", wf.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	opts := req.Options
	opts.Palette = s.config.Palette

	var res *pipeline.Result
	if isEmpty(req.States) {
		res, err = s.runner.RenderLatest(r.Context(), wf, opts)
	} else {
		var states workflow.States
		if states, err = pkgio.ReadStates(bytes.NewReader(req.States), pkgio.FormatJSON); err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err = s.runner.RenderWorkflow(r.Context(), wf, states, opts)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, res)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	var req DependenciesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if isEmpty(req.Dependencies) {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "dependencies are required"))
		return
	}
	deps, err := pkgio.ReadDependencies(bytes.NewReader(req.Dependencies), pkgio.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := req.Options
	opts.Palette = s.config.Palette
	res, err := s.runner.RenderDependencies(r.Context(), deps, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, res)
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a JSON body into v. It writes the error response and returns
// false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorStatus(w, r, http.StatusRequestEntityTooLarge,
				apperrors.New(apperrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res *pipeline.Result) {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeDOT) {
		etag := fmt.Sprintf("%q", res.Hash)
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", ContentTypeDOT+"; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.DOT))
		return
	}
	s.writeJSON(w, r, http.StatusOK, RenderResponse{
		DOT:    res.DOT,
		Hash:   res.Hash,
		Cached: res.CacheHit,
		Stats:  res.Stats,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeEnvelope(w, status, Response{
		Success:   true,
		RequestID: RequestID(r.Context()),
		Data:      data,
	})
}

// writeError classifies err and picks the status from its code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperrors.Classify(err)
	s.writeErrorStatus(w, r, apperrors.HTTPStatus(e.Code), e)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, e *apperrors.Error) {
	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", id, "code", e.Code, "err", e)
	} else {
		s.logger.Debug("request rejected", "id", id, "code", e.Code, "err", e)
	}
	s.writeEnvelope(w, status, Response{
		Success:   false,
		RequestID: id,
		Error:     &Error{Code: e.Code, Message: userMessage(e)},
	})
}

// userMessage includes the cause, since classified sentinels carry the
// useful detail (which endpoint, which ID) in the wrapped error.
func userMessage(e *apperrors.Error) string {
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (s *Server) writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}
