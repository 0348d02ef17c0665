package rendering

import (
	"strings"
	"text/template"

	"github.com/jonathan/resume-builder/internal/types"
)

var markdownFuncs = template.FuncMap{
	"join": strings.Join,
	"contact": func(info types.PersonalInfo) string {
		return joinNonEmpty(" · ", info.Email, info.Phone, info.Location, info.LinkedIn, info.Website)
	},
	"dates": func(start, end string, current bool) string {
		return strings.Replace(formatRange(dateRange{StartDate: start, EndDate: end, Current: current}), " -- ", " - ", 1)
	},
	"degree": func(degree, field string) string {
		return joinNonEmpty(", ", degree, field)
	},
}

// RenderMarkdown renders structured data as a Markdown document
func RenderMarkdown(data *types.StructuredData) (string, error) {
	if data == nil {
		return "", &RenderError{Format: FormatMarkdown, Cause: ErrNoData}
	}

	const name = "templates/resume.md.tmpl"
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return "", &TemplateError{Name: name, Stage: stageRead, Cause: err}
	}
	tmpl, err := template.New(name).Funcs(markdownFuncs).Parse(string(content))
	if err != nil {
		return "", &TemplateError{Name: name, Stage: stageParse, Cause: err}
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{Name: name, Stage: stageExecute, Cause: err}
	}
	return result.String(), nil
}
