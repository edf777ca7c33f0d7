// Package llm normalizes and parses model output shared by every
// component that consumes LLM responses.
package llm

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// ErrParseFailure tags model output that could not be parsed after
// normalization. Callers match it with eris.Is and degrade to an
// explicit error-flagged result instead of propagating.
var ErrParseFailure = eris.New("llm: unparseable model output")

// CleanJSON extracts a JSON document from model text that may be
// wrapped in markdown code fences or prose. It slices from the first
// opening delimiter to the matching last closing one, handling both
// objects and arrays.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	start, closer := objStart, "}"
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}

	if start >= 0 {
		if end := strings.LastIndex(text, closer); end > start {
			text = text[start : end+1]
		}
	}

	return strings.TrimSpace(text)
}

// TruncateRunes cuts s to at most limit bytes without splitting a
// multi-byte rune at the boundary, so truncated text stays valid UTF-8
// for the model.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// Decode normalizes text with CleanJSON and unmarshals it into v.
// Failures return an error wrapping ErrParseFailure.
func Decode(text string, v any) error {
	cleaned := CleanJSON(text)
	if cleaned == "" {
		return eris.Wrap(ErrParseFailure, "empty model output")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return eris.Wrapf(ErrParseFailure, "unmarshal: %v", err)
	}
	return nil
}
