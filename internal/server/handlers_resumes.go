package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// ---------------------------------------------------------------------
// Resume Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req types.CreateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resume, err := s.resumes.Create(r.Context(), p.Subject, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, resume)
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	summaries, err := s.resumes.List(r.Context(), p.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	resume, err := s.resumes.Get(r.Context(), r.PathValue("id"), p.Subject)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req types.UpdateResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resume, err := s.resumes.Update(r.Context(), r.PathValue("id"), p.Subject, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.resumes.Delete(r.Context(), id, p.Subject); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"deleted": true, "_id": id})
}

// ---------------------------------------------------------------------
// Import Handlers
// ---------------------------------------------------------------------

func (s *Server) handleImportURL(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req types.ImportURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resume, err := s.resumes.ImportURL(r.Context(), r.PathValue("id"), p.Subject, &req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

func (s *Server) handleImportPDF(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxPDFSize+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("File exceeds %d MiB", ingestion.MaxPDFSize>>20))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "A PDF must be uploaded in the 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, ingestion.MaxPDFSize+1))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	if len(data) > ingestion.MaxPDFSize {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("File exceeds %d MiB", ingestion.MaxPDFSize>>20))
		return
	}

	resume, err := s.resumes.ImportPDF(r.Context(), r.PathValue("id"), p.Subject, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resume)
}

// ---------------------------------------------------------------------
// Export Handler
// ---------------------------------------------------------------------

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	format, err := rendering.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "format", Message: "must be one of tex md json yaml"})
		return
	}

	doc, resume, err := s.resumes.Export(r.Context(), r.PathValue("id"), p.Subject, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(filenameBase(resume.Title))))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.logger.WarnContext(r.Context(), "failed to write export", "error", err)
	}
}
