// Package rendering turns structured resume data into exportable documents.
package rendering

import (
	"errors"
	"fmt"
)

// ErrNoData is wrapped by RenderError when there is nothing to export
var ErrNoData = errors.New("no structured data")

// Template stages reported by TemplateError
const (
	stageRead    = "read"
	stageParse   = "parse"
	stageExecute = "execute"
)

// TemplateError reports a template that could not be read, parsed or executed
type TemplateError struct {
	Name  string
	Stage string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %s failed: %v", e.Name, e.Stage, e.Cause)
}

func (e *TemplateError) Unwrap() error { return e.Cause }

// RenderError reports a document that could not be produced in Format
type RenderError struct {
	Format Format
	Cause  error
}

func (e *RenderError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("render: %v", e.Cause)
	}
	return fmt.Sprintf("render %s: %v", e.Format, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }
