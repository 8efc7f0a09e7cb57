package requirement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(s string) ai.Completer {
	return ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) { return s, nil })
}

func TestGenerate_NoCredential(t *testing.T) {
	_, err := NewGenerator(nil).Generate(context.Background(), nil, GenerateInput{Title: "Go Engineer"})
	require.ErrorIs(t, err, ai.ErrNoCredential)
}

func TestGenerate_ParsesAndAssignsIDs(t *testing.T) {
	c := reply("```json\n" + `[
		{"category":"Technical","description":"Go services in production","weight":9,"isRequired":true},
		{"category":"Experience","description":"  ","weight":5},
		{"category":"Soft Skills","description":"Mentoring","weight":14}
	]` + "\n```")

	reqs, err := NewGenerator(nil).Generate(context.Background(), c, GenerateInput{Title: "Go Engineer"})
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, "Go services in production", reqs[0].Description)
	assert.True(t, reqs[0].IsRequired)
	assert.Equal(t, 9, reqs[0].Weight)
	assert.Equal(t, job.MaxWeight, reqs[1].Weight)
	assert.Equal(t, 1, reqs[0].Position)
	assert.Equal(t, 2, reqs[1].Position)
	assert.NotEqual(t, uuid.Nil, reqs[0].ID)
	assert.NotEqual(t, reqs[0].ID, reqs[1].ID)
}

func TestGenerate_SalvagesArrayFromProse(t *testing.T) {
	c := reply(`Sure! Here are the criteria: [{"category":"Technical","description":"SQL","weight":6,"isRequired":false}] Hope that helps.`)
	reqs, err := NewGenerator(nil).Generate(context.Background(), c, GenerateInput{Title: "Analyst"})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "SQL", reqs[0].Description)
}

func TestGenerate_FailuresSurfaceNoPartialData(t *testing.T) {
	cases := map[string]ai.Completer{
		"garbage": reply("I cannot help with that."),
		"empty":   reply(`[{"category":"x","description":""}]`),
		"error": ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) {
			return "", errors.New("503")
		}),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			reqs, err := NewGenerator(nil).Generate(context.Background(), c, GenerateInput{Title: "x"})
			require.ErrorIs(t, err, ErrGenerateRequirements)
			assert.Nil(t, reqs)
		})
	}
}

func TestBuildGeneratePrompt_TruncatesContext(t *testing.T) {
	p := buildGeneratePrompt(GenerateInput{
		Title:   "Designer",
		Context: []string{strings.Repeat("a", maxContextChars+500)},
	})
	assert.Contains(t, p, "Supporting document 1")
	assert.NotContains(t, p, strings.Repeat("a", maxContextChars+1))
}

func TestBuildGeneratePrompt_ClipsOnRuneBoundary(t *testing.T) {
	p := buildGeneratePrompt(GenerateInput{
		Title:   "Designer",
		Context: []string{strings.Repeat("é", maxContextChars+10)},
	})
	assert.True(t, utf8.ValidString(p))
	assert.Contains(t, p, strings.Repeat("é", maxContextChars))
	assert.NotContains(t, p, strings.Repeat("é", maxContextChars+1))
}

type stubJobs struct {
	j   job.Job
	err error
}

func (s stubJobs) WithRequirements(context.Context, uuid.UUID, uuid.UUID) (job.Job, error) {
	return s.j, s.err
}

type stubRepo struct {
	deleteErr  error
	replaceErr error
	replaced   []job.Requirement
}

func (s *stubRepo) ListByJob(context.Context, uuid.UUID) ([]job.Requirement, error) { return nil, nil }
func (s *stubRepo) Create(_ context.Context, r job.Requirement) (job.Requirement, error) {
	return r, nil
}
func (s *stubRepo) Update(_ context.Context, r job.Requirement) (job.Requirement, error) {
	return r, nil
}
func (s *stubRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return s.deleteErr }
func (s *stubRepo) ReplaceAll(_ context.Context, _ uuid.UUID, reqs []job.Requirement) ([]job.Requirement, error) {
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	s.replaced = reqs
	return reqs, nil
}

var _ repository.RequirementRepository = (*stubRepo)(nil)

func TestService_DeleteReferencedRequirement(t *testing.T) {
	repo := &stubRepo{deleteErr: &pgconn.PgError{Code: "23503"}}
	svc := NewService(stubJobs{j: job.Job{ID: uuid.New()}}, repo, nil)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrRequirementInUse)
}

func TestService_AddRejectsInvalidWeight(t *testing.T) {
	svc := NewService(stubJobs{j: job.Job{ID: uuid.New()}}, &stubRepo{}, nil)
	_, err := svc.Add(context.Background(), uuid.New(), uuid.New(), Input{Description: "Go", Weight: 11})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GeneratePersist(t *testing.T) {
	jobID := uuid.New()
	repo := &stubRepo{}
	svc := NewService(stubJobs{j: job.Job{
		ID:           jobID,
		Title:        "Go Engineer",
		ContextFiles: []job.ContextFile{{Content: "team handbook"}},
	}}, repo, nil)

	var prompt string
	c := ai.CompleterFunc(func(_ context.Context, req ai.ChatRequest) (string, error) {
		prompt = req.Prompt
		return `[{"category":"Technical","description":"Go","weight":8,"isRequired":true}]`, nil
	})

	reqs, err := svc.Generate(context.Background(), uuid.New(), jobID, c, true)
	require.NoError(t, err)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, jobID, reqs[0].JobID)
	assert.Contains(t, prompt, "team handbook")
}

func TestService_GenerateWithoutPersistDoesNotWrite(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(stubJobs{j: job.Job{ID: uuid.New(), Title: "x"}}, repo, nil)
	_, err := svc.Generate(context.Background(), uuid.New(), uuid.New(),
		reply(`[{"category":"Technical","description":"Go","weight":8}]`), false)
	require.NoError(t, err)
	assert.Nil(t, repo.replaced)
}
