package candidate

import (
	"testing"

	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

func TestOverallScore_WeightedMean(t *testing.T) {
	r1 := job.Requirement{ID: uuid.New(), Weight: 10}
	r2 := job.Requirement{ID: uuid.New(), Weight: 5}

	got := OverallScore([]Score{
		{RequirementID: r1.ID.String(), Score: 8},
		{RequirementID: r2.ID.String(), Score: 4},
	}, []job.Requirement{r1, r2})

	// (8*10 + 4*5) / 15 = 6.666...
	if got != 6.7 {
		t.Fatalf("expected 6.7, got %v", got)
	}
}

func TestOverallScore_EqualScoresAcrossWeights(t *testing.T) {
	r1 := job.Requirement{ID: uuid.New(), Weight: 10}
	r2 := job.Requirement{ID: uuid.New(), Weight: 5}

	got := OverallScore([]Score{
		{RequirementID: r1.ID.String(), Score: 6},
		{RequirementID: r2.ID.String(), Score: 6},
	}, []job.Requirement{r1, r2})

	if got != 6.0 {
		t.Fatalf("expected 6.0, got %v", got)
	}
}

func TestOverallScore_RoundsToOneDecimal(t *testing.T) {
	r1 := job.Requirement{ID: uuid.New(), Weight: 3}
	r2 := job.Requirement{ID: uuid.New(), Weight: 4}

	// (7*3 + 8*4) / 7 = 53/7 = 7.571...
	got := OverallScore([]Score{
		{RequirementID: r1.ID.String(), Score: 7},
		{RequirementID: r2.ID.String(), Score: 8},
	}, []job.Requirement{r1, r2})

	if got != 7.6 {
		t.Fatalf("expected 7.6, got %v", got)
	}
}

func TestOverallScore_IgnoresRequirementsWithoutScore(t *testing.T) {
	r1 := job.Requirement{ID: uuid.New(), Weight: 2}
	r2 := job.Requirement{ID: uuid.New(), Weight: 9}

	got := OverallScore([]Score{{RequirementID: r1.ID.String(), Score: 5}}, []job.Requirement{r1, r2})
	if got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestOverallScore_Empty(t *testing.T) {
	r1 := job.Requirement{ID: uuid.New(), Weight: 2}
	if got := OverallScore(nil, []job.Requirement{r1}); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := OverallScore([]Score{{RequirementID: "unknown", Score: 9}}, []job.Requirement{r1}); got != 0 {
		t.Fatalf("expected 0 for unmatched scores, got %v", got)
	}
}

func TestIsProcessed(t *testing.T) {
	c := Candidate{}
	if c.IsProcessed() {
		t.Fatalf("empty candidate must not be processed")
	}
	c.Scores = []Score{{RequirementID: uuid.NewString(), Score: 1}}
	if !c.IsProcessed() {
		t.Fatalf("candidate with scores must be processed")
	}
}

func TestScoreFor_MissingIsZero(t *testing.T) {
	id := uuid.NewString()
	scores := []Score{{RequirementID: id, Score: 7}}
	if ScoreFor(scores, id) != 7 {
		t.Fatalf("expected 7")
	}
	if ScoreFor(scores, uuid.NewString()) != 0 {
		t.Fatalf("expected 0 for missing requirement")
	}
}

func TestStatusAfterScoring(t *testing.T) {
	cases := map[Status]Status{
		"":                StatusProcessed,
		StatusPending:     StatusProcessed,
		StatusProcessed:   StatusProcessed,
		StatusReviewed:    StatusReviewed,
		StatusInterviewed: StatusInterviewed,
		StatusHired:       StatusHired,
		StatusRejected:    StatusRejected,
	}
	for in, want := range cases {
		if got := in.AfterScoring(); got != want {
			t.Fatalf("%q: want %q, got %q", in, want, got)
		}
	}
}
