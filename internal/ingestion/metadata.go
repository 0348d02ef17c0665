package ingestion

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Source identifies where imported text came from
type Source string

const (
	SourceURL  Source = "url"
	SourcePDF  Source = "pdf"
	SourceFile Source = "file"
)

// Metadata describes one import
type Metadata struct {
	Source    Source `json:"source"`
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp"` // RFC3339 format
	Hash      string `json:"hash"`      // BLAKE2b-256 hex digest of the cleaned text
	Platform  string `json:"platform,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Browser   bool   `json:"browser,omitempty"` // rendered with the headless browser
	Chars     int    `json:"chars"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(source Source, content string, url string) *Metadata {
	return &Metadata{
		Source:    source,
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     len([]rune(content)),
	}
}

func computeHash(content string) string {
	hash := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
