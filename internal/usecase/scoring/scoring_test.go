package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() job.Job {
	return job.Job{
		ID:    uuid.New(),
		Title: "Backend Engineer",
		Requirements: []job.Requirement{
			{ID: uuid.New(), Category: "Technical", Description: "Go", Weight: 10, IsRequired: true},
			{ID: uuid.New(), Category: "Experience", Description: "Postgres", Weight: 5},
		},
	}
}

func replyJSON(t *testing.T, v any) ai.Completer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) { return string(b), nil })
}

func TestAnalyze_RecomputesOverallAndReconcilesIDs(t *testing.T) {
	j := testJob()
	c := replyJSON(t, map[string]any{
		"scores": []map[string]any{
			{"requirementId": j.Requirements[0].ID.String(), "score": 8, "comment": "five years of Go"},
			{"requirementId": "req-2", "score": 4, "comment": "some SQL"},
		},
		"overallScore": 9.9,
		"strengths":    []string{"Go", " "},
		"cultureFit":   map[string]any{"score": 7, "notes": "collaborative"},
		"skillAssessment": map[string]any{
			"technicalSkills": []string{"Go", "SQL"},
		},
	})

	res, err := NewScorer(nil).Analyze(context.Background(), c, j, candidate.Candidate{ID: uuid.New(), ResumeText: "Go developer"})
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, 6.7, res.Candidate.OverallScore)
	require.Len(t, res.Persistable, 2)
	assert.Equal(t, j.Requirements[1].ID.String(), res.Persistable[1].RequirementID)
	assert.Equal(t, []string{"Go"}, res.Analysis.Strengths)
	assert.Equal(t, 7, res.Candidate.CultureFit.Score)
	assert.Equal(t, []string{"Go", "SQL"}, res.Candidate.SkillKeywords)
}

func TestReconcile_DropsUnknownIDsFromPersistable(t *testing.T) {
	j := testJob()
	all, persistable := reconcile([]scoreReply{
		{RequirementID: j.Requirements[1].ID.String(), Score: 6},
		{RequirementID: j.Requirements[1].ID.String(), Score: 9},
		{RequirementID: "extra", Score: 5},
	}, j.Requirements)

	assert.Len(t, all, 3)
	assert.Equal(t, "extra", all[2].RequirementID)
	require.Len(t, persistable, 1)
	assert.Equal(t, 6, persistable[0].Score)
}

func TestAnalyze_Fallbacks(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), ResumeText: "text"}
	cases := map[string]ai.Completer{
		"no credential": nil,
		"call error": ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) {
			return "", errors.New("timeout")
		}),
		"not json":     ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) { return "sorry", nil }),
		"out of range": replyJSON(t, map[string]any{"scores": []map[string]any{{"score": 11}}}),
		"no scores":    replyJSON(t, map[string]any{"scores": []any{}}),
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := NewScorer(nil).Analyze(context.Background(), c, j, cand)
			require.NoError(t, err)
			assert.True(t, res.Fallback)
			assert.Equal(t, 0.0, res.Candidate.OverallScore)
			require.Len(t, res.Candidate.Scores, len(j.Requirements))
			for _, s := range res.Candidate.Scores {
				assert.Equal(t, 0, s.Score)
				assert.Equal(t, "N/A", s.Comment)
			}
			assert.Equal(t, []string{"N/A"}, res.Candidate.Strengths)
			assert.Equal(t, []string{"N/A"}, res.Candidate.Weaknesses)
			assert.Equal(t, []string{"N/A"}, res.Candidate.PersonalityTraits)
			assert.Empty(t, res.Persistable)
		})
	}
}

func TestAnalyze_Preconditions(t *testing.T) {
	_, err := NewScorer(nil).Analyze(context.Background(), nil, testJob(), candidate.Candidate{ResumeText: "  "})
	require.ErrorIs(t, err, ErrEmptyResume)

	_, err = NewScorer(nil).Analyze(context.Background(), nil, job.Job{}, candidate.Candidate{ResumeText: "x"})
	require.ErrorIs(t, err, ErrNoRequirements)
}

type fakeCandidates struct {
	byID     map[uuid.UUID]candidate.Candidate
	scores   map[uuid.UUID][]candidate.Score
	text     map[uuid.UUID]string
	replaces int
}

func newFakeCandidates(cs ...candidate.Candidate) *fakeCandidates {
	f := &fakeCandidates{
		byID:   map[uuid.UUID]candidate.Candidate{},
		scores: map[uuid.UUID][]candidate.Score{},
		text:   map[uuid.UUID]string{},
	}
	for _, c := range cs {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCandidates) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (candidate.Candidate, error) {
	c, ok := f.byID[id]
	if !ok {
		return candidate.Candidate{}, repository.ErrCandidateNotFound
	}
	return c, nil
}

func (f *fakeCandidates) SetResumeText(_ context.Context, id uuid.UUID, text string) error {
	f.text[id] = text
	return nil
}

func (f *fakeCandidates) ReplaceScores(_ context.Context, in repository.ScoreReplacement) error {
	f.replaces++
	f.scores[in.CandidateID] = append([]candidate.Score(nil), in.Scores...)
	return nil
}

type fakeJobs struct{ j job.Job }

func (f fakeJobs) WithRequirements(context.Context, uuid.UUID, uuid.UUID) (job.Job, error) {
	return f.j, nil
}

type fakeFiles map[string][]byte

func (f fakeFiles) Read(ref string) ([]byte, error) {
	b, ok := f[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func goodReply(t *testing.T, j job.Job) ai.Completer {
	return replyJSON(t, map[string]any{
		"scores": []map[string]any{
			{"requirementId": j.Requirements[0].ID.String(), "score": 8},
			{"requirementId": j.Requirements[1].ID.String(), "score": 4},
		},
	})
}

func TestService_RescoreReplacesInsteadOfAppending(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID, ResumeText: "Go developer"}
	repo := newFakeCandidates(cand)
	svc := NewService(fakeJobs{j: j}, repo, nil, nil)

	for i := 0; i < 2; i++ {
		res, err := svc.ScoreCandidate(context.Background(), uuid.New(), cand.ID, goodReply(t, j))
		require.NoError(t, err)
		assert.True(t, res.Persisted)
		assert.Equal(t, candidate.StatusProcessed, res.Candidate.Status)
		assert.NotNil(t, res.Candidate.ProcessedAt)
	}
	assert.Equal(t, 2, repo.replaces)
	assert.Len(t, repo.scores[cand.ID], len(j.Requirements))
}

func TestService_RescoreKeepsManualStatus(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID, ResumeText: "Go developer", Status: candidate.StatusInterviewed}
	svc := NewService(fakeJobs{j: j}, newFakeCandidates(cand), nil, nil)

	res, err := svc.Score(context.Background(), goodReply(t, j), j, cand)
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Equal(t, candidate.StatusInterviewed, res.Candidate.Status)
}

func TestService_RequirementIDsRoundTripIntoScores(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID, ResumeText: "Go developer"}
	repo := newFakeCandidates(cand)
	svc := NewService(fakeJobs{j: j}, repo, nil, nil)

	_, err := svc.Score(context.Background(), goodReply(t, j), j, cand)
	require.NoError(t, err)
	for i, s := range repo.scores[cand.ID] {
		assert.Equal(t, j.Requirements[i].ID.String(), s.RequirementID)
	}
}

func TestService_FallbackIsNotPersisted(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID, ResumeText: "Go developer"}
	repo := newFakeCandidates(cand)
	svc := NewService(fakeJobs{j: j}, repo, nil, nil)

	res, err := svc.Score(context.Background(), nil, j, cand)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.False(t, res.Persisted)
	assert.Zero(t, repo.replaces)
}

func TestService_RecoversTextFromStoredFile(t *testing.T) {
	j := testJob()
	ref := "/uploads/abc_resume.txt"
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID, ResumeURL: ref}
	repo := newFakeCandidates(cand)
	svc := NewService(fakeJobs{j: j}, repo, fakeFiles{ref: []byte("Seasoned Go engineer")}, nil)

	var prompt string
	c := ai.CompleterFunc(func(ctx context.Context, req ai.ChatRequest) (string, error) {
		prompt = req.Prompt
		return goodReply(t, j).Complete(ctx, req)
	})
	res, err := svc.Score(context.Background(), c, j, cand)
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Contains(t, prompt, "Seasoned Go engineer")
	assert.Equal(t, "Seasoned Go engineer", repo.text[cand.ID])
}

func TestService_EmptyResumeFailsBeforeAI(t *testing.T) {
	j := testJob()
	cand := candidate.Candidate{ID: uuid.New(), JobID: j.ID}
	called := false
	c := ai.CompleterFunc(func(context.Context, ai.ChatRequest) (string, error) {
		called = true
		return "", nil
	})
	_, err := NewService(fakeJobs{j: j}, newFakeCandidates(cand), nil, nil).Score(context.Background(), c, j, cand)
	require.ErrorIs(t, err, ErrEmptyResume)
	assert.False(t, called)
}

func TestBuildPrompt_ClipsResumeOnRuneBoundary(t *testing.T) {
	resume := strings.Repeat("ü", maxResumeChars+3)
	p := buildPrompt(testJob(), resume)
	assert.True(t, utf8.ValidString(p))
	assert.NotContains(t, p, strings.Repeat("ü", maxResumeChars+1))
}
