package llm

import (
	"context"
	"strings"
)

// CleanJSONBlock returns the JSON payload of a model response. Models wrap
// JSON in markdown fences or surround it with prose even when told not to.
// Text with no recognisable object or array is returned trimmed.
func CleanJSONBlock(text string) string {
	text = stripFence(strings.TrimSpace(text))
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if value := balanced(text[start:]); value != "" {
		return value
	}
	return text
}

// stripFence removes a surrounding ``` fence and its language tag
func stripFence(text string) string {
	body, ok := strings.CutPrefix(text, "```")
	if !ok {
		return text
	}
	if tag, rest, found := strings.Cut(body, "\n"); found && isLanguageTag(tag) {
		body = rest
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	return len(s) < 20 && !strings.ContainsAny(s, " {[")
}

// balanced returns the object or array at the start of text up to its
// matching close bracket, or "" when text does not start with one or
// never closes. Brackets inside strings are ignored.
func balanced(text string) string {
	if text == "" {
		return ""
	}
	var open, closing byte
	switch text[0] {
	case '{':
		open, closing = '{', '}'
	case '[':
		open, closing = '[', ']'
	default:
		return ""
	}

	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == closing:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}

// ChunkText splits text into pieces of at most size runes. A non-positive
// size uses DefaultStreamChunkSize.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultStreamChunkSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// Replay delivers text to fn in ChunkText pieces, stopping early if ctx is done
// or fn fails.
func Replay(ctx context.Context, text string, size int, fn ChunkFunc) error {
	for _, chunk := range ChunkText(text, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
