package analysis

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/jonathan/resume-builder/internal/types"
)

var fold = cases.Fold()

// Normalize trims every string field, drops empty list entries and removes
// case-insensitive duplicates from skills and languages. The first spelling wins.
func Normalize(data *types.StructuredData) {
	if data == nil {
		return
	}

	p := &data.PersonalInfo
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.LinkedIn = strings.TrimSpace(p.LinkedIn)
	p.Website = strings.TrimSpace(p.Website)
	data.Summary = strings.TrimSpace(data.Summary)

	if data.Experience == nil {
		data.Experience = []types.Experience{}
	}
	for i := range data.Experience {
		e := &data.Experience[i]
		e.Company = strings.TrimSpace(e.Company)
		e.Position = strings.TrimSpace(e.Position)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.Description = strings.TrimSpace(e.Description)
		e.Highlights = compact(e.Highlights)
		if strings.EqualFold(e.EndDate, "present") {
			e.IsCurrent = true
		}
	}

	if data.Education == nil {
		data.Education = []types.Education{}
	}
	for i := range data.Education {
		e := &data.Education[i]
		e.Institution = strings.TrimSpace(e.Institution)
		e.Degree = strings.TrimSpace(e.Degree)
		e.FieldOfStudy = strings.TrimSpace(e.FieldOfStudy)
		e.StartDate = strings.TrimSpace(e.StartDate)
		e.EndDate = strings.TrimSpace(e.EndDate)
		e.Description = strings.TrimSpace(e.Description)
	}

	for i := range data.Projects {
		pr := &data.Projects[i]
		pr.Name = strings.TrimSpace(pr.Name)
		pr.Description = strings.TrimSpace(pr.Description)
		pr.URL = strings.TrimSpace(pr.URL)
		pr.Technologies = dedupe(pr.Technologies)
	}

	data.Skills = dedupe(data.Skills)
	if data.Languages != nil {
		data.Languages = dedupe(data.Languages)
	}
}

// compact trims entries and drops the empty ones
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// dedupe is compact plus case-folded de-duplication
func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range compact(items) {
		key := fold.String(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
