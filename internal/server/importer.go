package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/ingestion"
)

// Importer turns outside material into resume text
type Importer interface {
	FromURL(ctx context.Context, url string, useBrowser bool) (string, error)
	FromPDF(data []byte) (string, error)
}

// IngestionImporter imports with the ingestion package
type IngestionImporter struct {
	logger *slog.Logger
}

// NewIngestionImporter creates an importer that logs to logger
func NewIngestionImporter(logger *slog.Logger) *IngestionImporter {
	return &IngestionImporter{logger: logger}
}

// FromURL fetches and cleans a profile or portfolio page
func (i *IngestionImporter) FromURL(ctx context.Context, url string, useBrowser bool) (string, error) {
	text, _, err := ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{
		UseBrowser: useBrowser,
		Logger:     i.logger,
	})
	return text, err
}

// FromPDF extracts and cleans the text of a PDF
func (i *IngestionImporter) FromPDF(data []byte) (string, error) {
	text, _, err := ingestion.IngestFromPDF(data)
	return text, err
}

// importError maps ingestion failures the caller can fix onto ErrValidation
func importError(field string, err error) error {
	switch {
	case errors.Is(err, fetch.ErrBlockedAddress):
		return &ErrValidation{Field: field, Message: "must point to a public host"}
	case errors.Is(err, ingestion.ErrInvalidURL):
		return &ErrValidation{Field: field, Message: "must be a valid http(s) URL"}
	case errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return &ErrValidation{Field: field, Message: "page could not be fetched"}
	case errors.Is(err, ingestion.ErrNotPDF):
		return &ErrValidation{Field: field, Message: "must be a PDF document"}
	case errors.Is(err, ingestion.ErrEmptyText):
		return &ErrValidation{Field: field, Message: "no text could be extracted"}
	case field == "file":
		return &ErrValidation{Field: field, Message: "could not read PDF"}
	default:
		return err
	}
}
