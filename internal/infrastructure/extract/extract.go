package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// binarySampleSize is the number of bytes sampled for binary detection.
	binarySampleSize = 1000
	// binaryThreshold is the share of control bytes that marks data as binary.
	binaryThreshold = 0.3
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrBinaryText  = errors.New("file content is not readable text")
)

var supported = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
	".csv":  {},
	".xlsx": {},
}

// Supported reports whether name has an accepted résumé extension.
func Supported(name string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Text extracts plain text from an in-memory document, dispatching on the
// file extension.
func Text(ctx context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = plainText(data)
	case ".csv":
		text, err = csvText(data)
	case ".pdf":
		text, err = pdfText(ctx, data)
	case ".doc":
		text, err = docText(ctx, data)
	case ".docx":
		text, err = docxText(data)
	case ".xlsx":
		text, err = xlsxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return "", err
	}
	return normalize(text), nil
}

func plainText(data []byte) (string, error) {
	s := string(data)
	if IsBinaryData(s) || !utf8.ValidString(s) {
		return "", ErrBinaryText
	}
	return s, nil
}

func csvText(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var b strings.Builder
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv: %w", err)
		}
		line := strings.TrimSpace(strings.Join(rec, " "))
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// IsBinaryData reports whether content looks like a binary document rather
// than text (PDF/ZIP magic or a high share of control bytes).
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}
	if strings.HasPrefix(content, "%PDF-") {
		return true
	}
	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	sampleSize := min(binarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(sampleSize) > binaryThreshold
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
