package candidate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"hireflow/internal/domain"
	"hireflow/internal/domain/candidate"
	"hireflow/internal/infrastructure/extract"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds the upload limit")
	ErrEmptyFile       = errors.New("file is empty")
)

const DefaultMaxBytes = 10 << 20

// Upload is one incoming résumé. NameHint, when set, is tried after the
// filename and content heuristics (mail importers pass the sender name).
type Upload struct {
	Filename string
	Data     []byte
	NameHint string
}

type blobStore interface {
	Save(original string, data []byte) (string, error)
	Read(ref string) ([]byte, error)
	Remove(ref string) error
}

type candidateCreator interface {
	Create(ctx context.Context, c candidate.Candidate) (candidate.Candidate, error)
}

type Ingestor struct {
	store    blobStore
	repo     candidateCreator
	maxBytes int64
	logger   *log.Logger
}

func NewIngestor(store blobStore, repo candidateCreator, maxBytes int64, logger *log.Logger) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ingestor{store: store, repo: repo, maxBytes: maxBytes, logger: logger}
}

// Ingest turns each upload into a pending candidate of jobID. Rejected files
// and failed writes land in the Outcome; a candidate whose row could not be
// stored is still returned in memory.
func (i *Ingestor) Ingest(ctx context.Context, userID, jobID uuid.UUID, uploads []Upload) ([]candidate.Candidate, domain.Outcome) {
	var (
		out     = make([]candidate.Candidate, 0, len(uploads))
		outcome domain.Outcome
	)
	for idx, up := range uploads {
		c, err := i.build(ctx, userID, jobID, idx, up)
		if err != nil {
			i.logger.Printf("candidate_ingest job_id=%s file=%q status=rejected err=%v", jobID, up.Filename, err)
			outcome.Fail(up.Filename, err)
			continue
		}

		created, err := i.repo.Create(ctx, c)
		if err != nil {
			i.logger.Printf("candidate_ingest job_id=%s candidate_id=%s status=not_persisted err=%v", jobID, c.ID, err)
			outcome.Fail(c.ID.String(), err)
			out = append(out, c)
			continue
		}
		outcome.Ok(created.ID.String())
		out = append(out, created)
	}
	return out, outcome
}

func (i *Ingestor) build(ctx context.Context, userID, jobID uuid.UUID, idx int, up Upload) (candidate.Candidate, error) {
	name := filepath.Base(strings.TrimSpace(up.Filename))
	switch {
	case !extract.Supported(name):
		return candidate.Candidate{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(name))
	case len(up.Data) == 0:
		return candidate.Candidate{}, ErrEmptyFile
	case int64(len(up.Data)) > i.maxBytes:
		return candidate.Candidate{}, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(up.Data))
	}

	ref, err := i.store.Save(name, up.Data)
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("store file: %w", err)
	}

	text, err := extract.Text(ctx, name, up.Data)
	if err != nil {
		// Scoring retries extraction from the stored file.
		i.logger.Printf("candidate_ingest file=%q status=no_text err=%v", name, err)
		text = ""
	}

	display := nameFromFilename(name)
	if display == "" {
		display = nameFromText(text)
	}
	if display == "" {
		display = strings.TrimSpace(up.NameHint)
	}
	if display == "" {
		display = placeholderName(idx)
	}

	return candidate.Candidate{
		ID:         uuid.New(),
		JobID:      jobID,
		UserID:     userID,
		Name:       display,
		Email:      emailFor(display),
		ResumeURL:  ref,
		ResumeText: text,
		Status:     candidate.StatusPending,
	}, nil
}
