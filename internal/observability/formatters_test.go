package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintStructuredResume(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	data := &types.StructuredData{
		PersonalInfo: types.PersonalInfo{FullName: "Jane Doe", Email: "jane@example.com"},
		Experience: []types.Experience{
			{Company: "Acme", Position: "Engineer", StartDate: "01/2020", IsCurrent: true},
		},
		Education: []types.Education{{Institution: "MIT", Degree: "BSc"}},
		Skills:    []string{"Go", "SQL"},
	}

	p.PrintStructuredResume(data)
	output := buf.String()

	assert.Contains(t, output, "STRUCTURED RESUME")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "Engineer @ Acme (01/2020 - Present)")
	assert.Contains(t, output, "MIT, BSc")
	assert.Contains(t, output, "Go, SQL")
}

func TestPrintStructuredResume_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStructuredResume(nil)
	assert.Empty(t, buf.String())
}

func TestPrintStructuredResume_ManyEntries(t *testing.T) {
	var buf bytes.Buffer
	data := &types.StructuredData{}
	for i := 0; i < 8; i++ {
		data.Experience = append(data.Experience, types.Experience{Company: "C", Position: "P"})
	}

	NewPrinter(&buf).PrintStructuredResume(data)
	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintImportSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintImportSummary("resume.pdf", "Jane Doe\nEngineer\nGo")

	output := buf.String()
	assert.Contains(t, output, "IMPORTED TEXT")
	assert.Contains(t, output, "resume.pdf")
	assert.Contains(t, output, "Lines:      3")
}
