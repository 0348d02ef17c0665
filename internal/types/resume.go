// Package types provides type definitions for structured data used throughout the resume-builder system.
package types

import "time"

// ResumeStatus is the lifecycle state of a resume.
type ResumeStatus string

// Resume lifecycle states
const (
	StatusDraft    ResumeStatus = "draft"
	StatusAnalyzed ResumeStatus = "analyzed"
	StatusExported ResumeStatus = "exported"
)

// DefaultResumeTitle is used when a resume is created without a title.
const DefaultResumeTitle = "My Resume"

// Valid reports whether s is a known status.
func (s ResumeStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAnalyzed, StatusExported:
		return true
	}
	return false
}

// Resume is a user's resume document: the raw text they typed or imported and
// the structured data produced by analysis.
type Resume struct {
	ID             string          `json:"_id" bson:"_id"`
	UserID         string          `json:"userId" bson:"userId"`
	Title          string          `json:"title" bson:"title"`
	Status         ResumeStatus    `json:"status" bson:"status"`
	RawData        string          `json:"rawData" bson:"rawData"`
	StructuredData *StructuredData `json:"structuredData,omitempty" bson:"structuredData,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// ResumeSummary is the list projection of a resume.
type ResumeSummary struct {
	ID        string       `json:"_id" bson:"_id"`
	Title     string       `json:"title" bson:"title"`
	Status    ResumeStatus `json:"status" bson:"status"`
	UpdatedAt time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// HasText reports whether the resume has non-blank raw content.
func (r *Resume) HasText() bool {
	for _, c := range r.RawData {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return true
		}
	}
	return false
}
