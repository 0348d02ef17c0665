package rendering

import "strings"

// latexEscaper maps the ten LaTeX special characters to safe sequences.
// strings.Replacer makes one pass, so replacements are never re-escaped.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`^`, `\textasciicircum{}`,
	`~`, `\textasciitilde{}`,
)

// EscapeLaTeX escapes text for use inside a LaTeX document
func EscapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}

func escapeAll(values []string) []string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeLaTeX(v)
	}
	return escaped
}
