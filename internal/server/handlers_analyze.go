package server

import (
	"net/http"

	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Analysis Handlers
// ---------------------------------------------------------------------

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.Analyze(r.Context(), r.PathValue("id"), p.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// handleAnalyzeStream streams model output as SSE. Ownership and empty-text
// checks run before the stream opens so they still produce JSON errors.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	resume, err := s.resumes.PrepareAnalysis(ctx, r.PathValue("id"), p.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	_, err = s.resumes.StreamAnalysis(ctx, resume, sse.WriteChunk)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.InfoContext(ctx, "client disconnected during analysis stream", "resume_id", resume.ID)
			return
		}
		s.logger.ErrorContext(ctx, "analysis stream failed", "resume_id", resume.ID, "error", err)
		if err := sse.WriteError(clientMessage(err)); err != nil {
			s.logger.WarnContext(ctx, "failed to send error event", "resume_id", resume.ID, "error", err)
		}
		return
	}

	if err := sse.WriteComplete(resume.ID, string(types.StatusAnalyzed)); err != nil {
		s.logger.WarnContext(ctx, "failed to send complete event", "resume_id", resume.ID, "error", err)
	}
}
