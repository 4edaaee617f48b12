package server

import (
	"net/http"

	"github.com/jonathan/shorts-worker/internal/pipeline"
)

// ProcessRequest is the request body for /process-video.
type ProcessRequest struct {
	YouTubeURL string `json:"youtube_url" validate:"required,url"`
}

// PipelineErrorResponse is the failure shape: a human-readable message plus
// a machine-readable stage tag identifying where the pipeline stopped.
type PipelineErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// HealthResponse is the static liveness document.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// handleProcessVideo runs the full pipeline synchronously and writes
// exactly one response: the success payload or a tagged error.
func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[ProcessRequest](r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "youtube_url must be a valid URL")
		return
	}

	s.log.Infow("received request", "url", req.YouTubeURL)

	result, err := s.runner.Process(r.Context(), req.YouTubeURL)
	if err != nil {
		resp := PipelineErrorResponse{Error: err.Error()}
		if stage, ok := pipeline.StageOf(err); ok {
			resp.Stage = string(stage)
		}
		s.jsonResponse(w, http.StatusInternalServerError, resp)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleHealth returns the static liveness indicator.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{Status: "online", Service: ServiceName})
}
