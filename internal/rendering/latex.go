// Package rendering turns structured resume data into exportable documents.
package rendering

import (
	"embed"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/resume-builder/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData represents the data structure passed to the LaTeX template.
// Every string is already escaped.
type TemplateData struct {
	Name      string
	Contact   []string
	Summary   string
	Companies []CompanySection
	Education []EducationSection
	Projects  []ProjectSection
	Skills    []string
	Languages []string
}

// CompanySection represents a company with one or more roles
type CompanySection struct {
	Company string
	Roles   []RoleSection
}

// RoleSection represents a role within a company with merged date ranges
type RoleSection struct {
	Role        string
	DateRanges  string // e.g., "01/2020 -- 10/2021, 07/2023 -- Present"
	Description string
	Bullets     []string
}

// EducationSection is one escaped education entry
type EducationSection struct {
	Institution string
	Degree      string
	Dates       string
	Description string
}

// ProjectSection is one escaped project entry
type ProjectSection struct {
	Name         string
	Description  string
	Technologies []string
}

// dateRange represents a single date range
type dateRange struct {
	StartDate string
	EndDate   string
	Current   bool
}

var latexFuncs = template.FuncMap{
	"escape": EscapeLaTeX,
	"join":   strings.Join,
}

// RenderLaTeX renders structured data with the built-in LaTeX template
func RenderLaTeX(data *types.StructuredData) (string, error) {
	const name = "templates/resume.tex.tmpl"
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return "", &TemplateError{Name: name, Stage: stageRead, Cause: err}
	}
	tmpl, err := template.New(name).Funcs(latexFuncs).Parse(string(content))
	if err != nil {
		return "", &TemplateError{Name: name, Stage: stageParse, Cause: err}
	}
	return executeLaTeX(tmpl, data)
}

// RenderLaTeXFromFile renders structured data with a custom template file.
// The template receives a TemplateData.
func RenderLaTeXFromFile(data *types.StructuredData, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return executeLaTeX(tmpl, data)
}

func executeLaTeX(tmpl *template.Template, data *types.StructuredData) (string, error) {
	if data == nil {
		return "", &RenderError{Format: FormatTeX, Cause: ErrNoData}
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, buildTemplateData(data)); err != nil {
		return "", &TemplateError{Name: tmpl.Name(), Stage: stageExecute, Cause: err}
	}
	return result.String(), nil
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &TemplateError{Name: templatePath, Stage: stageRead, Cause: err}
	}

	tmpl, err := template.New(templatePath).Funcs(latexFuncs).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Name: templatePath, Stage: stageParse, Cause: err}
	}

	return tmpl, nil
}

// buildTemplateData escapes every field of data for LaTeX
func buildTemplateData(data *types.StructuredData) *TemplateData {
	info := data.PersonalInfo
	contact := make([]string, 0, 5)
	for _, v := range []string{info.Email, info.Phone, info.Location, info.LinkedIn, info.Website} {
		if v != "" {
			contact = append(contact, EscapeLaTeX(v))
		}
	}

	education := make([]EducationSection, 0, len(data.Education))
	for _, e := range data.Education {
		education = append(education, EducationSection{
			Institution: EscapeLaTeX(e.Institution),
			Degree:      EscapeLaTeX(joinNonEmpty(", ", e.Degree, e.FieldOfStudy)),
			Dates:       EscapeLaTeX(formatRange(dateRange{StartDate: e.StartDate, EndDate: e.EndDate})),
			Description: EscapeLaTeX(e.Description),
		})
	}

	projects := make([]ProjectSection, 0, len(data.Projects))
	for _, p := range data.Projects {
		projects = append(projects, ProjectSection{
			Name:         EscapeLaTeX(p.Name),
			Description:  EscapeLaTeX(p.Description),
			Technologies: escapeAll(p.Technologies),
		})
	}

	return &TemplateData{
		Name:      EscapeLaTeX(info.FullName),
		Contact:   contact,
		Summary:   EscapeLaTeX(data.Summary),
		Companies: groupByCompanyAndRole(data.Experience),
		Education: education,
		Projects:  projects,
		Skills:    escapeAll(data.Skills),
		Languages: escapeAll(data.Languages),
	}
}

// roleKey is used for grouping entries by company and role
type roleKey struct {
	Company string
	Role    string
}

// groupByCompanyAndRole groups experience entries by company, then by
// position, merging date ranges and highlights. Companies and roles keep the
// order in which they first appear.
func groupByCompanyAndRole(experience []types.Experience) []CompanySection {
	if len(experience) == 0 {
		return []CompanySection{}
	}

	type roleData struct {
		ranges      []dateRange
		description string
		bullets     []string
	}

	roles := make(map[roleKey]*roleData)
	companyOrder := []string{}
	companyRoleOrder := make(map[string][]string)

	for _, exp := range experience {
		key := roleKey{Company: exp.Company, Role: exp.Position}

		if _, seen := companyRoleOrder[exp.Company]; !seen {
			companyOrder = append(companyOrder, exp.Company)
		}

		rd, ok := roles[key]
		if !ok {
			rd = &roleData{}
			roles[key] = rd
			companyRoleOrder[exp.Company] = append(companyRoleOrder[exp.Company], exp.Position)
		}

		rd.ranges = append(rd.ranges, dateRange{StartDate: exp.StartDate, EndDate: exp.EndDate, Current: exp.IsCurrent})
		if rd.description == "" {
			rd.description = exp.Description
		}
		for _, h := range exp.Highlights {
			rd.bullets = append(rd.bullets, EscapeLaTeX(h))
		}
	}

	companies := make([]CompanySection, 0, len(companyOrder))
	for _, companyName := range companyOrder {
		sections := make([]RoleSection, 0, len(companyRoleOrder[companyName]))
		for _, roleName := range companyRoleOrder[companyName] {
			rd := roles[roleKey{Company: companyName, Role: roleName}]
			sections = append(sections, RoleSection{
				Role:        EscapeLaTeX(roleName),
				DateRanges:  mergeDateRanges(rd.ranges),
				Description: EscapeLaTeX(rd.description),
				Bullets:     rd.bullets,
			})
		}
		companies = append(companies, CompanySection{
			Company: EscapeLaTeX(companyName),
			Roles:   sections,
		})
	}

	return companies
}

// mergeDateRanges collects unique date ranges and formats them as a
// comma-separated, escaped string
func mergeDateRanges(ranges []dateRange) string {
	seen := make(map[string]bool)
	parts := []string{}
	for _, r := range ranges {
		formatted := formatRange(r)
		if formatted == "" || seen[formatted] {
			continue
		}
		seen[formatted] = true
		parts = append(parts, EscapeLaTeX(formatted))
	}
	return strings.Join(parts, ", ")
}

// formatRange renders a single range as "start -- end", with "Present" for
// open-ended current roles
func formatRange(r dateRange) string {
	end := r.EndDate
	if strings.EqualFold(end, "present") || (end == "" && r.Current) {
		end = "Present"
	}
	switch {
	case r.StartDate == "" && end == "":
		return ""
	case r.StartDate == "":
		return end
	case end == "":
		return r.StartDate
	default:
		return r.StartDate + " -- " + end
	}
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
