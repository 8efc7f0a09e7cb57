package candidate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hireflow/internal/domain/candidate"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromFilename(t *testing.T) {
	cases := map[string]string{
		"resume_john_doe_2023.pdf":     "John Doe",
		"CV-maria-garcia.docx":         "Maria Garcia",
		"curriculum vitae ana lee.pdf": "Ana Lee",
		"priya_patel_resume.txt":       "Priya Patel",
		"John_Doe_Resume_Final.pdf":    "John Doe",
		"final_cv_omar_haddad_v3.pdf":  "Omar Haddad",
		"new_resume_v2.pdf":            "",
		"IMG_00234.pdf":                "",
		"untitled.docx":                "",
		"scan_document_final.pdf":      "",
		"12345.pdf":                    "",
		"cv.pdf":                       "",
		"al.pdf":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, nameFromFilename(in), in)
	}
}

func TestNameFromText(t *testing.T) {
	text := "CURRICULUM VITAE\n\nJANE SMITH\njane@example.com | +1 555 0100\nSenior Engineer"
	assert.Equal(t, "Jane Smith", nameFromText(text))

	assert.Equal(t, "", nameFromText("Objective: build reliable systems\nwww.example.com\n2019 - 2023"))
}

func TestPlaceholderNameIsStable(t *testing.T) {
	assert.Equal(t, placeholderName(3), placeholderName(3))
	assert.NotEqual(t, placeholderName(0), placeholderName(1))
	for i := 0; i < 20; i++ {
		n := placeholderName(i)
		require.NotEmpty(t, n)
		assert.False(t, strings.ContainsAny(n, "0123456789"), n)
	}
}

func TestEmailFor(t *testing.T) {
	assert.Equal(t, "john.doe@example.com", emailFor("John Doe"))
	assert.Equal(t, "maryjane.oneil@example.com", emailFor("Mary-Jane O'Neil"))
	assert.Equal(t, "candidate@example.com", emailFor("  "))
}

type memStore struct {
	saved map[string][]byte
	err   error
}

func (m *memStore) Save(original string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	ref := "/uploads/" + uuid.NewString() + "_" + original
	m.saved[ref] = data
	return ref, nil
}

func (m *memStore) Read(ref string) ([]byte, error) {
	b, ok := m.saved[ref]
	if !ok {
		return nil, errors.New("missing")
	}
	return b, nil
}

func (m *memStore) Remove(ref string) error {
	delete(m.saved, ref)
	return nil
}

type fakeCreator struct {
	failFor string
	created []candidate.Candidate
}

func (f *fakeCreator) Create(_ context.Context, c candidate.Candidate) (candidate.Candidate, error) {
	if f.failFor != "" && c.Name == f.failFor {
		return candidate.Candidate{}, errors.New("db down")
	}
	f.created = append(f.created, c)
	return c, nil
}

func TestIngest(t *testing.T) {
	store := &memStore{}
	repo := &fakeCreator{}
	ing := NewIngestor(store, repo, 1024, nil)
	jobID := uuid.New()

	got, outcome := ing.Ingest(context.Background(), uuid.New(), jobID, []Upload{
		{Filename: "resume_john_doe_2023.txt", Data: []byte("Experienced Go developer.")},
		{Filename: "IMG_00234.txt", Data: []byte("Summary: built distributed systems since 2015")},
		{Filename: "photo.png", Data: []byte("x")},
		{Filename: "big.txt", Data: []byte(strings.Repeat("a", 2048))},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "John Doe", got[0].Name)
	assert.Equal(t, "john.doe@example.com", got[0].Email)
	assert.Equal(t, candidate.StatusPending, got[0].Status)
	assert.Equal(t, jobID, got[0].JobID)
	assert.Empty(t, got[0].Scores)
	assert.Equal(t, "Experienced Go developer.", got[0].ResumeText)
	assert.True(t, strings.HasPrefix(got[0].ResumeURL, "/uploads/"))

	assert.Equal(t, placeholderName(1), got[1].Name)

	assert.Len(t, outcome.Succeeded, 2)
	require.Len(t, outcome.Failed, 2)
	assert.Equal(t, "photo.png", outcome.Failed[0].ID)
	assert.Equal(t, "big.txt", outcome.Failed[1].ID)
}

func TestIngest_PersistFailureStillReturnsCandidate(t *testing.T) {
	repo := &fakeCreator{failFor: "John Doe"}
	ing := NewIngestor(&memStore{}, repo, 0, nil)

	got, outcome := ing.Ingest(context.Background(), uuid.New(), uuid.New(), []Upload{
		{Filename: "john_doe.txt", Data: []byte("hello")},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "John Doe", got[0].Name)
	require.True(t, outcome.HasFailures())
	assert.Equal(t, got[0].ID.String(), outcome.Failed[0].ID)
	assert.Equal(t, "db down", outcome.Failed[0].Reason)
}

func TestIngest_NameHintBeforePlaceholder(t *testing.T) {
	ing := NewIngestor(&memStore{}, &fakeCreator{}, 0, nil)
	got, _ := ing.Ingest(context.Background(), uuid.New(), uuid.New(), []Upload{
		{Filename: "scan.txt", Data: []byte("Summary: experience"), NameHint: "Sam Rivera"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Sam Rivera", got[0].Name)
}
