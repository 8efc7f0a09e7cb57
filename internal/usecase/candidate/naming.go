package candidate

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	minNameLength  = 3
	maxNameLineLen = 30
	nameScanLines  = 10
)

// genericStems are filename words that never name a person.
var genericStems = map[string]struct{}{
	"untitled": {}, "document": {}, "doc": {}, "scan": {}, "scanned": {}, "img": {}, "image": {},
	"file": {}, "new": {}, "copy": {}, "download": {}, "final": {}, "draft": {}, "photo": {},
	"pdf": {}, "page": {}, "attachment": {}, "version": {}, "updated": {}, "latest": {},
}

var resumeWords = map[string]struct{}{
	"cv": {}, "resume": {}, "résumé": {}, "curriculum": {}, "vitae": {}, "vita": {},
}

// nameFromFilename derives "John Doe" from "resume_john_doe_2023.pdf". It
// returns "" when the stem carries no plausible name.
func nameFromFilename(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	stem = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '(' || r == ')' || r == '+' {
			return ' '
		}
		return r
	}, strings.ToLower(stem))

	words := make([]string, 0, 4)
	for _, w := range strings.Fields(stem) {
		if _, ok := resumeWords[w]; ok {
			continue
		}
		if _, ok := genericStems[w]; ok {
			continue
		}
		// leftovers like the "v" of "v2"
		if len([]rune(w)) < 2 {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return ""
	}

	name := titleCase(words)
	if len([]rune(name)) < minNameLength {
		return ""
	}
	return name
}

// nameFromText scans the first lines of a résumé for a 2-3 word line that
// reads like a person's name.
func nameFromText(text string) string {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen++; seen > nameScanLines {
			break
		}
		if looksLikeName(line) {
			words := strings.Fields(line)
			for i, w := range words {
				words[i] = strings.ToLower(w)
			}
			return titleCase(words)
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if len(line) >= maxNameLineLen {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	if strings.ContainsAny(line, "@/:|,;#&()") || strings.Contains(strings.ToLower(line), "www") {
		return false
	}
	for _, w := range words {
		if _, ok := resumeWords[strings.ToLower(w)]; ok {
			return false
		}
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '.' {
				return false
			}
		}
		if !unicode.IsLetter([]rune(w)[0]) {
			return false
		}
	}
	return true
}

var (
	firstNames = []string{"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Jamie", "Avery", "Quinn", "Drew"}
	lastNames  = []string{"Smith", "Johnson", "Lee", "Garcia", "Brown", "Martin", "Clark", "Lewis", "Walker"}
)

// placeholderName picks a stable name from the pools for the index-th file.
// The pool sizes are coprime so the first 90 indices never repeat.
func placeholderName(index int) string {
	if index < 0 {
		index = -index
	}
	return firstNames[index%len(firstNames)] + " " + lastNames[index%len(lastNames)]
}

// emailFor builds first.last@example.com from a display name.
func emailFor(name string) string {
	parts := make([]string, 0, 3)
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, w)
		if w != "" {
			parts = append(parts, w)
		}
	}
	if len(parts) == 0 {
		return "candidate@example.com"
	}
	return strings.Join(parts, ".") + "@example.com"
}

func titleCase(words []string) string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		r[0] = unicode.ToUpper(r[0])
		out = append(out, string(r))
	}
	return strings.Join(out, " ")
}
