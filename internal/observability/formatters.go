// Package observability provides logging, tracing, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintStructuredResume outputs a human-readable summary of an analyzed resume.
func (p *Printer) PrintStructuredResume(data *types.StructuredData) {
	if data == nil {
		return
	}

	var sb strings.Builder
	info := data.PersonalInfo
	sb.WriteString(fmt.Sprintf("Name:     %s\n", info.FullName))
	if info.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", info.Email))
	}
	if info.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", info.Location))
	}
	sb.WriteString("\n")

	if len(data.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d):\n", len(data.Experience)))
		count := min(len(data.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := data.Experience[i]
			end := exp.EndDate
			if exp.IsCurrent {
				end = "Present"
			}
			sb.WriteString(fmt.Sprintf("  • %s @ %s", exp.Position, exp.Company))
			if exp.StartDate != "" || end != "" {
				sb.WriteString(fmt.Sprintf(" (%s - %s)", exp.StartDate, end))
			}
			sb.WriteString("\n")
		}
		if len(data.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(data.Experience)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(data.Education) > 0 {
		sb.WriteString("Education:\n")
		count := min(len(data.Education), 3)
		for i := 0; i < count; i++ {
			edu := data.Education[i]
			sb.WriteString(fmt.Sprintf("  • %s", edu.Institution))
			if edu.Degree != "" {
				sb.WriteString(fmt.Sprintf(", %s", edu.Degree))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(data.Skills) > 0 {
		skills := strings.Join(data.Skills, ", ")
		sb.WriteString(fmt.Sprintf("Skills: %s\n", skills))
	}

	p.printBox("STRUCTURED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintImportSummary outputs the size and a preview of imported raw text.
func (p *Printer) PrintImportSummary(source string, text string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:     %s\n", source))
	sb.WriteString(fmt.Sprintf("Characters: %d\n", len([]rune(text))))
	sb.WriteString(fmt.Sprintf("Lines:      %d\n", strings.Count(text, "\n")+1))

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 0 && lines[0] != "" {
		sb.WriteString("\n")
		count := min(len(lines), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(lines[i] + "\n")
		}
	}

	p.printBox("IMPORTED TEXT", strings.TrimSuffix(sb.String(), "\n"))
}
