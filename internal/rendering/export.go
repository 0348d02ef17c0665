package rendering

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-builder/internal/types"
)

// Format is an export format
type Format string

const (
	FormatTeX      Format = "tex"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// DefaultFormat is used when no format is requested
const DefaultFormat = FormatMarkdown

// ErrUnknownFormat is returned by ParseFormat for unsupported formats
var ErrUnknownFormat = errors.New("unsupported export format")

// ParseFormat maps a query or flag value to a Format. Empty means DefaultFormat.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultFormat, nil
	case "tex", "latex":
		return FormatTeX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatTeX:
		return "application/x-tex; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Filename returns the download name for a document called base
func (f Format) Filename(base string) string {
	if base == "" {
		base = "resume"
	}
	return base + "." + string(f)
}

// Export renders data in the given format
func Export(data *types.StructuredData, format Format) ([]byte, error) {
	if data == nil {
		return nil, &RenderError{Format: format, Cause: ErrNoData}
	}

	switch format {
	case FormatTeX:
		out, err := RenderLaTeX(data)
		return []byte(out), err
	case FormatMarkdown:
		out, err := RenderMarkdown(data)
		return []byte(out), err
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, &RenderError{Format: FormatJSON, Cause: err}
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return nil, &RenderError{Format: FormatYAML, Cause: err}
		}
		if err := enc.Close(); err != nil {
			return nil, &RenderError{Format: FormatYAML, Cause: err}
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
