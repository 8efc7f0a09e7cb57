package repository

import (
	"context"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/domain/candidate"

	"github.com/google/uuid"
)

// ScoreReplacement is everything one scoring pass writes for a candidate.
// Scores must already be restricted to persistable requirement ids.
type ScoreReplacement struct {
	CandidateID  uuid.UUID
	Scores       []candidate.Score
	Analysis     candidate.Analysis
	OverallScore float64
	ProcessedAt  time.Time
}

type CandidateUpdate struct {
	IsStarred *bool
	Status    *candidate.Status
}

type CandidateRepository interface {
	Create(ctx context.Context, c candidate.Candidate) (candidate.Candidate, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (candidate.Candidate, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error)
	ListUnscored(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error)
	GetAnalysis(ctx context.Context, candidateID uuid.UUID) (candidate.Analysis, error)
	Update(ctx context.Context, userID, id uuid.UUID, in CandidateUpdate) (candidate.Candidate, error)
	SetResumeText(ctx context.Context, id uuid.UUID, text string) error
	ReplaceScores(ctx context.Context, in ScoreReplacement) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

const candidateSelect = `SELECT c.id, c.job_id, c.user_id, c.name, c.email, c.resume_url, c.resume_text,
	c.overall_score, c.is_starred, c.status, c.education, c.years_of_experience, c.location,
	c.communication_style, c.skill_keywords, c.preferred_tools, c.processed_at, c.created_at, c.updated_at,
	COALESCE(a.strengths, '{}'), COALESCE(a.weaknesses, '{}'), COALESCE(a.personality_traits, '{}'),
	COALESCE(a.culture_fit_score, 0), COALESCE(a.culture_fit_notes, ''),
	COALESCE(a.leadership_score, 0), COALESCE(a.leadership_notes, '')
	FROM candidates c
	LEFT JOIN candidate_analysis a ON a.candidate_id = c.id`

func scanCandidate(row database.Row) (candidate.Candidate, error) {
	var (
		c      candidate.Candidate
		status string
	)
	if err := row.Scan(
		&c.ID, &c.JobID, &c.UserID, &c.Name, &c.Email, &c.ResumeURL, &c.ResumeText,
		&c.OverallScore, &c.IsStarred, &status, &c.Education, &c.YearsOfExperience, &c.Location,
		&c.CommunicationStyle, &c.SkillKeywords, &c.PreferredTools, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.Strengths, &c.Weaknesses, &c.PersonalityTraits,
		&c.CultureFit.Score, &c.CultureFit.Notes,
		&c.LeadershipPotential.Score, &c.LeadershipPotential.Notes,
	); err != nil {
		if isNoRows(err) {
			return candidate.Candidate{}, ErrCandidateNotFound
		}
		return candidate.Candidate{}, err
	}
	c.Status = candidate.Status(status)
	return c, nil
}

func (r *PostgresCandidateRepository) Create(ctx context.Context, c candidate.Candidate) (candidate.Candidate, error) {
	if c.Status == "" {
		c.Status = candidate.StatusPending
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO candidates (id, job_id, user_id, name, email, resume_url, resume_text, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.JobID, c.UserID, c.Name, c.Email, c.ResumeURL, c.ResumeText, string(c.Status),
	)
	if err != nil {
		return candidate.Candidate{}, err
	}
	return r.GetByID(ctx, c.UserID, c.ID)
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (candidate.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx, candidateSelect+` WHERE c.id = $1 AND c.user_id = $2`, id, userID))
	if err != nil {
		return candidate.Candidate{}, err
	}
	scores, err := r.scoresFor(ctx, []uuid.UUID{c.ID})
	if err != nil {
		return candidate.Candidate{}, err
	}
	c.Scores = scores[c.ID]
	return c, nil
}

func (r *PostgresCandidateRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error) {
	return r.list(ctx, candidateSelect+` WHERE c.job_id = $1 ORDER BY c.created_at ASC, c.id ASC`, jobID)
}

// ListUnscored returns candidates with no score rows, oldest first.
func (r *PostgresCandidateRepository) ListUnscored(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error) {
	return r.list(ctx, candidateSelect+`
		WHERE c.job_id = $1
		  AND NOT EXISTS (SELECT 1 FROM candidate_scores s WHERE s.candidate_id = c.id)
		ORDER BY c.created_at ASC, c.id ASC`, jobID)
}

func (r *PostgresCandidateRepository) list(ctx context.Context, query string, args ...any) ([]candidate.Candidate, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Candidate, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	scores, err := r.scoresFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Scores = scores[out[i].ID]
	}
	return out, nil
}

func (r *PostgresCandidateRepository) scoresFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]candidate.Score, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.candidate_id, s.requirement_id, s.score, COALESCE(s.comment, '')
		 FROM candidate_scores s
		 JOIN job_requirements jr ON jr.id = s.requirement_id
		 WHERE s.candidate_id = ANY($1::uuid[])
		 ORDER BY jr.position ASC, jr.created_at ASC`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]candidate.Score, len(ids))
	for rows.Next() {
		var (
			cid, rid uuid.UUID
			s        candidate.Score
		)
		if err := rows.Scan(&cid, &rid, &s.Score, &s.Comment); err != nil {
			return nil, err
		}
		s.RequirementID = rid.String()
		out[cid] = append(out[cid], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCandidateRepository) GetAnalysis(ctx context.Context, candidateID uuid.UUID) (candidate.Analysis, error) {
	a := candidate.Analysis{CandidateID: candidateID}
	err := r.db.QueryRow(ctx,
		`SELECT strengths, weaknesses, personality_traits, culture_fit_score, culture_fit_notes,
		        leadership_score, leadership_notes, technical_skills, soft_skills,
		        experience_evaluation, notes, updated_at
		 FROM candidate_analysis WHERE candidate_id = $1`,
		candidateID,
	).Scan(&a.Strengths, &a.Weaknesses, &a.PersonalityTraits, &a.CultureFit.Score, &a.CultureFit.Notes,
		&a.LeadershipPotential.Score, &a.LeadershipPotential.Notes, &a.TechnicalSkills, &a.SoftSkills,
		&a.ExperienceEvaluation, &a.Notes, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return candidate.Analysis{CandidateID: candidateID}, nil
		}
		return candidate.Analysis{}, err
	}
	return a, nil
}

func (r *PostgresCandidateRepository) Update(ctx context.Context, userID, id uuid.UUID, in CandidateUpdate) (candidate.Candidate, error) {
	var status *string
	if in.Status != nil {
		s := string(*in.Status)
		status = &s
	}
	n, err := r.db.Exec(ctx,
		`UPDATE candidates
		 SET is_starred = COALESCE($1, is_starred), status = COALESCE($2, status), updated_at = now()
		 WHERE id = $3 AND user_id = $4`,
		in.IsStarred, status, id, userID,
	)
	if err != nil {
		return candidate.Candidate{}, err
	}
	if n == 0 {
		return candidate.Candidate{}, ErrCandidateNotFound
	}
	return r.GetByID(ctx, userID, id)
}

func (r *PostgresCandidateRepository) SetResumeText(ctx context.Context, id uuid.UUID, text string) error {
	_, err := r.db.Exec(ctx, `UPDATE candidates SET resume_text = $1, updated_at = now() WHERE id = $2`, text, id)
	return err
}

// ReplaceScores deletes the candidate's previous scores and writes the new
// set, the analysis row and the candidate aggregates in one transaction, so
// re-scoring never accumulates rows.
func (r *PostgresCandidateRepository) ReplaceScores(ctx context.Context, in ScoreReplacement) error {
	a := in.Analysis
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM candidate_scores WHERE candidate_id = $1`, in.CandidateID); err != nil {
			return err
		}
		for _, s := range in.Scores {
			if _, err := tx.Exec(ctx,
				`INSERT INTO candidate_scores (id, candidate_id, requirement_id, score, comment)
				 VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), in.CandidateID, s.RequirementID, s.Score, s.Comment,
			); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO candidate_analysis (candidate_id, strengths, weaknesses, personality_traits,
				culture_fit_score, culture_fit_notes, leadership_score, leadership_notes,
				technical_skills, soft_skills, experience_evaluation, notes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
			 ON CONFLICT (candidate_id) DO UPDATE SET
				strengths = EXCLUDED.strengths,
				weaknesses = EXCLUDED.weaknesses,
				personality_traits = EXCLUDED.personality_traits,
				culture_fit_score = EXCLUDED.culture_fit_score,
				culture_fit_notes = EXCLUDED.culture_fit_notes,
				leadership_score = EXCLUDED.leadership_score,
				leadership_notes = EXCLUDED.leadership_notes,
				technical_skills = EXCLUDED.technical_skills,
				soft_skills = EXCLUDED.soft_skills,
				experience_evaluation = EXCLUDED.experience_evaluation,
				notes = EXCLUDED.notes,
				updated_at = now()`,
			in.CandidateID, nonNil(a.Strengths), nonNil(a.Weaknesses), nonNil(a.PersonalityTraits),
			a.CultureFit.Score, a.CultureFit.Notes, a.LeadershipPotential.Score, a.LeadershipPotential.Notes,
			nonNil(a.TechnicalSkills), nonNil(a.SoftSkills), a.ExperienceEvaluation, a.Notes,
		); err != nil {
			return err
		}

		n, err := tx.Exec(ctx,
			`UPDATE candidates
			 SET overall_score = $1,
				 status = CASE WHEN status = $6 THEN $2 ELSE status END,
				 skill_keywords = $3, processed_at = $4, updated_at = now()
			 WHERE id = $5`,
			in.OverallScore, string(candidate.StatusProcessed), nonNil(a.TechnicalSkills), in.ProcessedAt, in.CandidateID,
			string(candidate.StatusPending),
		)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCandidateNotFound
		}
		return nil
	})
}

func (r *PostgresCandidateRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// nonNil keeps NOT NULL text[] columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
