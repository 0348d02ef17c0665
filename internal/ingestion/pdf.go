package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPDFSize is the largest accepted upload
const MaxPDFSize = 10 << 20

// ErrNotPDF is returned when the input does not carry a PDF header
var ErrNotPDF = errors.New("file is not a PDF")

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF header
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// ExtractPDFText returns the plain text of every page, one page per block.
// Pages that fail to decode are skipped.
func ExtractPDFText(r io.ReaderAt, size int64) (string, int, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	numPages := reader.NumPage()
	var text strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n\n")
	}
	return text.String(), numPages, nil
}

// IngestFromPDF extracts and cleans the text of an in-memory PDF
func IngestFromPDF(data []byte) (string, *Metadata, error) {
	if !IsPDF(data) {
		return "", nil, ErrNotPDF
	}
	if len(data) > MaxPDFSize {
		return "", nil, fmt.Errorf("PDF exceeds %d bytes", MaxPDFSize)
	}

	raw, pages, err := ExtractPDFText(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return "", nil, ErrEmptyText
	}

	metadata := NewMetadata(SourcePDF, cleaned, "")
	metadata.Pages = pages
	return cleaned, metadata, nil
}
