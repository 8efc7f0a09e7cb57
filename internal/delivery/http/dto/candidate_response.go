package dto

import (
	"time"

	"hireflow/internal/domain/candidate"

	"github.com/google/uuid"
)

type ScoreResponse struct {
	RequirementID string `json:"requirement_id"`
	Score         int    `json:"score"`
	Comment       string `json:"comment"`
}

type AssessmentResponse struct {
	Score int    `json:"score"`
	Notes string `json:"notes"`
}

type CandidateResponse struct {
	ID                  uuid.UUID          `json:"id"`
	JobID               uuid.UUID          `json:"job_id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	ResumeURL           string             `json:"resume_url"`
	OverallScore        float64            `json:"overall_score"`
	Scores              []ScoreResponse    `json:"scores"`
	Strengths           []string           `json:"strengths"`
	Weaknesses          []string           `json:"weaknesses"`
	IsStarred           bool               `json:"is_starred"`
	Status              candidate.Status   `json:"status"`
	Processed           bool               `json:"processed"`
	PersonalityTraits   []string           `json:"personality_traits"`
	CultureFit          AssessmentResponse `json:"culture_fit"`
	LeadershipPotential AssessmentResponse `json:"leadership_potential"`
	Education           string             `json:"education"`
	YearsOfExperience   int                `json:"years_of_experience"`
	Location            string             `json:"location"`
	SkillKeywords       []string           `json:"skill_keywords"`
	CommunicationStyle  string             `json:"communication_style"`
	PreferredTools      []string           `json:"preferred_tools"`
	ProcessedAt         *time.Time         `json:"processed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

type AnalysisResponse struct {
	Strengths            []string           `json:"strengths"`
	Weaknesses           []string           `json:"weaknesses"`
	PersonalityTraits    []string           `json:"personality_traits"`
	CultureFit           AssessmentResponse `json:"culture_fit"`
	LeadershipPotential  AssessmentResponse `json:"leadership_potential"`
	TechnicalSkills      []string           `json:"technical_skills"`
	SoftSkills           []string           `json:"soft_skills"`
	ExperienceEvaluation string             `json:"experience_evaluation"`
	Notes                string             `json:"notes"`
}

type CandidateDetailResponse struct {
	CandidateResponse
	Analysis AnalysisResponse `json:"analysis"`
}

// ScoreResultResponse is one scoring pass. Fallback results were not stored.
type ScoreResultResponse struct {
	Candidate CandidateResponse `json:"candidate"`
	Analysis  AnalysisResponse  `json:"analysis"`
	Fallback  bool              `json:"fallback"`
	Persisted bool              `json:"persisted"`
}

func NewCandidateResponses(items []candidate.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCandidateResponse(c))
	}
	return out
}

func NewCandidateResponse(c candidate.Candidate) CandidateResponse {
	scores := make([]ScoreResponse, 0, len(c.Scores))
	for _, s := range c.Scores {
		scores = append(scores, ScoreResponse{RequirementID: s.RequirementID, Score: s.Score, Comment: s.Comment})
	}
	return CandidateResponse{
		ID:                  c.ID,
		JobID:               c.JobID,
		Name:                c.Name,
		Email:               c.Email,
		ResumeURL:           c.ResumeURL,
		OverallScore:        c.OverallScore,
		Scores:              scores,
		Strengths:           nonNil(c.Strengths),
		Weaknesses:          nonNil(c.Weaknesses),
		IsStarred:           c.IsStarred,
		Status:              c.Status,
		Processed:           c.IsProcessed(),
		PersonalityTraits:   nonNil(c.PersonalityTraits),
		CultureFit:          newAssessment(c.CultureFit),
		LeadershipPotential: newAssessment(c.LeadershipPotential),
		Education:           c.Education,
		YearsOfExperience:   c.YearsOfExperience,
		Location:            c.Location,
		SkillKeywords:       nonNil(c.SkillKeywords),
		CommunicationStyle:  c.CommunicationStyle,
		PreferredTools:      nonNil(c.PreferredTools),
		ProcessedAt:         c.ProcessedAt,
		CreatedAt:           c.CreatedAt,
	}
}

func NewAnalysisResponse(a candidate.Analysis) AnalysisResponse {
	return AnalysisResponse{
		Strengths:            nonNil(a.Strengths),
		Weaknesses:           nonNil(a.Weaknesses),
		PersonalityTraits:    nonNil(a.PersonalityTraits),
		CultureFit:           newAssessment(a.CultureFit),
		LeadershipPotential:  newAssessment(a.LeadershipPotential),
		TechnicalSkills:      nonNil(a.TechnicalSkills),
		SoftSkills:           nonNil(a.SoftSkills),
		ExperienceEvaluation: a.ExperienceEvaluation,
		Notes:                a.Notes,
	}
}

func newAssessment(a candidate.Assessment) AssessmentResponse {
	return AssessmentResponse{Score: a.Score, Notes: a.Notes}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
