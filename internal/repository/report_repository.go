package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"hireflow/internal/database"
	"hireflow/internal/domain/report"

	"github.com/google/uuid"
)

type ReportRepository interface {
	Create(ctx context.Context, r report.Report) (report.Report, error)
	AddCandidate(ctx context.Context, reportID, candidateID uuid.UUID) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (report.Report, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]report.Report, error)
}

type PostgresReportRepository struct {
	db database.DB
}

func NewPostgresReportRepository(db database.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

const reportColumns = `id, job_id, user_id, title, summary, content, additional_prompt, rankings, generated_by, created_at`

func scanReport(row database.Row) (report.Report, error) {
	var (
		r        report.Report
		rankings []byte
		source   string
	)
	if err := row.Scan(&r.ID, &r.JobID, &r.UserID, &r.Title, &r.Summary, &r.Content,
		&r.AdditionalPrompt, &rankings, &source, &r.CreatedAt); err != nil {
		if isNoRows(err) {
			return report.Report{}, ErrReportNotFound
		}
		return report.Report{}, err
	}
	r.GeneratedBy = report.Source(source)
	if len(rankings) > 0 {
		if err := json.Unmarshal(rankings, &r.Rankings); err != nil {
			return report.Report{}, fmt.Errorf("decode rankings for report %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// Create stores the report row only; candidate links are written one by one
// through AddCandidate so a failed link does not lose the report.
func (r *PostgresReportRepository) Create(ctx context.Context, rep report.Report) (report.Report, error) {
	rankings := rep.Rankings
	if rankings == nil {
		rankings = []report.Ranking{}
	}
	raw, err := json.Marshal(rankings)
	if err != nil {
		return report.Report{}, err
	}
	return scanReport(r.db.QueryRow(ctx,
		`INSERT INTO reports (id, job_id, user_id, title, summary, content, additional_prompt, rankings, generated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+reportColumns,
		rep.ID, rep.JobID, rep.UserID, rep.Title, rep.Summary, rep.Content, rep.AdditionalPrompt, raw, string(rep.GeneratedBy),
	))
}

func (r *PostgresReportRepository) AddCandidate(ctx context.Context, reportID, candidateID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO report_candidates (report_id, candidate_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		reportID, candidateID,
	)
	return err
}

func (r *PostgresReportRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (report.Report, error) {
	rep, err := scanReport(r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return report.Report{}, err
	}
	links, err := r.candidateIDs(ctx, []uuid.UUID{rep.ID})
	if err != nil {
		return report.Report{}, err
	}
	rep.CandidateIDs = links[rep.ID]
	return rep, nil
}

func (r *PostgresReportRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]report.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]report.Report, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
		ids = append(ids, rep.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}

	links, err := r.candidateIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].CandidateIDs = links[out[i].ID]
	}
	return out, nil
}

func (r *PostgresReportRepository) candidateIDs(ctx context.Context, reportIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rc.report_id, rc.candidate_id
		 FROM report_candidates rc
		 JOIN candidates c ON c.id = rc.candidate_id
		 WHERE rc.report_id = ANY($1::uuid[])
		 ORDER BY c.created_at ASC`,
		uuidStrings(reportIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]uuid.UUID, len(reportIDs))
	for rows.Next() {
		var rid, cid uuid.UUID
		if err := rows.Scan(&rid, &cid); err != nil {
			return nil, err
		}
		out[rid] = append(out[rid], cid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
