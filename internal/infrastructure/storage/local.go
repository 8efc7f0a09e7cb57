package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const publicPrefix = "/uploads/"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Local keeps uploaded documents in one directory. References handed out are
// "/uploads/<stored name>" and are only meaningful to this server.
type Local struct {
	dir string
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir}
}

func (l *Local) Dir() string {
	return l.dir
}

// Save writes data under a unique name derived from original and returns the
// public reference.
func (l *Local) Save(original string, data []byte) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	stored := uuid.NewString() + "_" + sanitize(original)
	path := filepath.Join(l.dir, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return publicPrefix + stored, nil
}

// Read loads a document by the reference Save returned.
func (l *Local) Read(ref string) ([]byte, error) {
	name, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}

func (l *Local) Remove(ref string) error {
	name, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *Local) resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, publicPrefix) {
		return "", fmt.Errorf("not a local upload reference: %q", ref)
	}
	name := strings.TrimPrefix(ref, publicPrefix)
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid upload reference: %q", ref)
	}
	return filepath.Join(l.dir, name), nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		return "upload"
	}
	return name
}
