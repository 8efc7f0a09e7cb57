package ai

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNoJSON = errors.New("no JSON found in completion")

	arrayRe = regexp.MustCompile(`(?s)\[.*\]`)
)

// StripFences removes a surrounding markdown code fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractArray returns the outermost [...] span of s.
func ExtractArray(s string) (string, bool) {
	m := arrayRe.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// ExtractObject returns the span from the first '{' to the last '}'.
func ExtractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeArray parses a JSON array reply, salvaging the first [...] block
// when the reply carries surrounding prose.
func DecodeArray(raw string, out any) error {
	clean := StripFences(raw)
	err := json.Unmarshal([]byte(clean), out)
	if err == nil {
		return nil
	}
	block, ok := ExtractArray(clean)
	if !ok {
		return errors.Join(ErrNoJSON, err)
	}
	return json.Unmarshal([]byte(block), out)
}

// DecodeObject parses a JSON object reply with the same salvage rule.
func DecodeObject(raw string, out any) error {
	clean := StripFences(raw)
	err := json.Unmarshal([]byte(clean), out)
	if err == nil {
		return nil
	}
	block, ok := ExtractObject(clean)
	if !ok {
		return errors.Join(ErrNoJSON, err)
	}
	return json.Unmarshal([]byte(block), out)
}

// Clip cuts s to at most n runes so prompt excerpts never end mid-character.
func Clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
