package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// minExtractedTextLength guards against pdftotext succeeding on an image-only PDF.
const minExtractedTextLength = 50

// pdftotext and antiword only read from disk, so the upload is spilled to a
// temp file for the duration of the call.
func pdfText(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := spill(data, "*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdf extraction requires pdftotext (poppler-utils): %w", err)
	}
	text := string(out)
	if len(text) < minExtractedTextLength {
		return "", fmt.Errorf("extracted pdf text is too short (%d bytes)", len(text))
	}
	return text, nil
}

func docText(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := spill(data, "*.doc")
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, err := exec.CommandContext(ctx, "antiword", path).Output()
	if err != nil {
		return "", fmt.Errorf("doc extraction requires antiword: %w", err)
	}
	return string(out), nil
}

func spill(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", "hireflow-"+pattern)
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
