package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	msgAddTextFirst = "Please add text to your resume first"
	msgAnalyzeFirst = "Please analyze your resume first"
)

// ResumeAnalyzer structures free resume text. *analysis.Analyzer satisfies it.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, text string) (*types.StructuredData, error)
	Stream(ctx context.Context, text string, onChunk llm.ChunkFunc) (*types.StructuredData, error)
}

// ResumeService provides ownership-scoped resume operations
type ResumeService struct {
	store    Store
	analyzer ResumeAnalyzer
	importer Importer
	logger   *slog.Logger
	now      func() time.Time
}

// NewResumeService creates a new ResumeService with the given dependencies
func NewResumeService(store Store, analyzer ResumeAnalyzer, importer Importer, logger *slog.Logger) *ResumeService {
	if logger == nil {
		logger = slog.Default()
	}
	if importer == nil {
		importer = NewIngestionImporter(logger)
	}
	return &ResumeService{
		store:    store,
		analyzer: analyzer,
		importer: importer,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new draft resume for userID
func (s *ResumeService) Create(ctx context.Context, userID string, req *types.CreateResumeRequest) (*types.Resume, error) {
	if req == nil {
		req = &types.CreateResumeRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	now := s.now().UTC()
	resume := &types.Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     req.ResolvedTitle(),
		Status:    types.StatusDraft,
		RawData:   "",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return resume, nil
}

// List returns the user's resume summaries, most recently updated first
func (s *ResumeService) List(ctx context.Context, userID string) ([]types.ResumeSummary, error) {
	summaries, err := s.store.ListResumes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	if summaries == nil {
		summaries = []types.ResumeSummary{}
	}
	return summaries, nil
}

// Get loads a resume and checks that userID owns it
func (s *ResumeService) Get(ctx context.Context, id, userID string) (*types.Resume, error) {
	resume, err := s.store.GetResume(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	if resume == nil {
		return nil, &ErrResumeNotFound{ID: id}
	}
	if resume.UserID != userID {
		return nil, &ErrForbidden{}
	}
	return resume, nil
}

// Update applies the provided fields
func (s *ResumeService) Update(ctx context.Context, id, userID string, req *types.UpdateResumeRequest) (*types.Resume, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	resume, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(resume)
	return s.save(ctx, resume)
}

// Delete removes a resume the caller owns
func (s *ResumeService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteResume(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	if !deleted {
		return &ErrResumeNotFound{ID: id}
	}
	return nil
}

// Analyze structures the resume's raw text and stores the result
func (s *ResumeService) Analyze(ctx context.Context, id, userID string) (*types.Resume, error) {
	resume, err := s.PrepareAnalysis(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.analyzer.Analyze(ctx, resume.RawData)
	if err != nil {
		return nil, analysisError(err)
	}
	return s.completeAnalysis(ctx, resume, data)
}

// PrepareAnalysis runs the checks that must pass before analysis starts
func (s *ResumeService) PrepareAnalysis(ctx context.Context, id, userID string) (*types.Resume, error) {
	resume, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !resume.HasText() {
		return nil, &ErrEmptyResume{Message: msgAddTextFirst}
	}
	return resume, nil
}

// StreamAnalysis streams model output for a prepared resume to onChunk and
// stores the structured result.
func (s *ResumeService) StreamAnalysis(ctx context.Context, resume *types.Resume, onChunk llm.ChunkFunc) (*types.Resume, error) {
	data, err := s.analyzer.Stream(ctx, resume.RawData, onChunk)
	if err != nil {
		return nil, analysisError(err)
	}
	return s.completeAnalysis(ctx, resume, data)
}

func (s *ResumeService) completeAnalysis(ctx context.Context, resume *types.Resume, data *types.StructuredData) (*types.Resume, error) {
	resume.StructuredData = data
	resume.Status = types.StatusAnalyzed
	saved, err := s.save(ctx, resume)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementGenerations(ctx, resume.UserID); err != nil {
		return nil, fmt.Errorf("failed to record generation: %w", err)
	}
	s.logger.InfoContext(ctx, "resume analyzed", "resume_id", resume.ID,
		"experience", len(data.Experience), "skills", len(data.Skills))
	return saved, nil
}

// ImportURL replaces the resume's raw text with the text of a web page
func (s *ResumeService) ImportURL(ctx context.Context, id, userID string, req *types.ImportURLRequest) (*types.Resume, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	resume, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	text, err := s.importer.FromURL(ctx, req.URL, req.UseBrowser)
	if err != nil {
		return nil, importError("url", err)
	}
	resume.RawData = text
	return s.save(ctx, resume)
}

// ImportPDF replaces the resume's raw text with the text of a PDF
func (s *ResumeService) ImportPDF(ctx context.Context, id, userID string, data []byte) (*types.Resume, error) {
	resume, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	text, err := s.importer.FromPDF(data)
	if err != nil {
		return nil, importError("file", err)
	}
	resume.RawData = text
	return s.save(ctx, resume)
}

// Export renders the structured data and marks the resume exported
func (s *ResumeService) Export(ctx context.Context, id, userID string, format rendering.Format) ([]byte, *types.Resume, error) {
	resume, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if resume.StructuredData == nil {
		return nil, nil, &ErrEmptyResume{Message: msgAnalyzeFirst}
	}

	doc, err := rendering.Export(resume.StructuredData, format)
	if err != nil {
		if errors.Is(err, rendering.ErrUnknownFormat) {
			return nil, nil, &ErrValidation{Field: "format", Message: err.Error()}
		}
		return nil, nil, fmt.Errorf("failed to export resume: %w", err)
	}

	resume.Status = types.StatusExported
	saved, err := s.save(ctx, resume)
	if err != nil {
		return nil, nil, err
	}
	return doc, saved, nil
}

func (s *ResumeService) save(ctx context.Context, resume *types.Resume) (*types.Resume, error) {
	resume.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	return resume, nil
}

// analysisError maps analyzer failures onto HTTP-facing errors
func analysisError(err error) error {
	var structuring *analysis.StructuringError
	switch {
	case errors.Is(err, analysis.ErrEmptyInput):
		return &ErrEmptyResume{Message: msgAddTextFirst}
	case errors.As(err, &structuring):
		return &ErrAnalysisFailed{Cause: structuring}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &ErrAnalysisFailed{Cause: err}
	}
}

// filenameBase turns a resume title into a download name
func filenameBase(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
