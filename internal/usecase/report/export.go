package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hireflow/internal/domain/candidate"
	"hireflow/internal/domain/job"
	"hireflow/internal/domain/report"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const (
	summarySheet = "Summary"
	scoresSheet  = "Scores"
)

var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Export is a rendered report download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// matrix is the per-candidate score grid shared by both formats.
type matrix struct {
	report report.Report
	job    job.Job
	rows   []candidate.Candidate
}

func (m matrix) header() []string {
	h := []string{"Rank", "Candidate", "Email"}
	for _, r := range m.job.Requirements {
		h = append(h, fmt.Sprintf("%s (w%d)", r.Description, r.Weight))
	}
	return append(h, "Overall")
}

func (m matrix) row(i int) []any {
	c := m.rows[i]
	out := []any{i + 1, c.Name, c.Email}
	for _, r := range m.job.Requirements {
		out = append(out, candidate.ScoreFor(c.Scores, r.ID.String()))
	}
	return append(out, c.OverallScore)
}

// Export renders the report header and score matrix. Candidates deleted
// since generation are left out.
func (s *Service) Export(ctx context.Context, userID, reportID uuid.UUID, format Format) (Export, error) {
	if format != FormatCSV && format != FormatXLSX {
		return Export{}, ErrUnsupportedFormat
	}
	rep, err := s.Get(ctx, userID, reportID)
	if err != nil {
		return Export{}, err
	}
	j, err := s.jobs.WithRequirements(ctx, userID, rep.JobID)
	if err != nil {
		return Export{}, err
	}
	all, err := s.candidates.ListByJob(ctx, rep.JobID)
	if err != nil {
		return Export{}, fmt.Errorf("%w: list candidates: %v", ErrInternal, err)
	}

	m := matrix{report: rep, job: j, rows: orderForExport(rep, intersect(all, rep.CandidateIDs))}
	name := exportName(rep)

	switch format {
	case FormatXLSX:
		body, err := m.xlsx()
		if err != nil {
			return Export{}, fmt.Errorf("%w: render xlsx: %v", ErrInternal, err)
		}
		return Export{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		body, err := m.csv()
		if err != nil {
			return Export{}, fmt.Errorf("%w: render csv: %v", ErrInternal, err)
		}
		return Export{Filename: name + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	}
}

// orderForExport follows the stored rankings, falling back to score order
// for candidates the rankings do not mention.
func orderForExport(rep report.Report, cands []candidate.Candidate) []candidate.Candidate {
	byID := make(map[uuid.UUID]candidate.Candidate, len(cands))
	for _, c := range cands {
		byID[c.ID] = c
	}
	out := make([]candidate.Candidate, 0, len(cands))
	for _, r := range rep.Rankings {
		if c, ok := byID[r.CandidateID]; ok {
			out = append(out, c)
			delete(byID, r.CandidateID)
		}
	}
	rest := make([]candidate.Candidate, 0, len(byID))
	for _, c := range cands {
		if _, ok := byID[c.ID]; ok {
			rest = append(rest, c)
		}
	}
	return append(out, rank(rest)...)
}

func (m matrix) csv() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{"Report", m.report.Title},
		{"Job", m.job.Title},
		{"Generated", m.report.CreatedAt.UTC().Format(time.RFC3339)},
		{"Source", string(m.report.GeneratedBy)},
		{"Summary", m.report.Summary},
		{},
		m.header(),
	}
	for i := range m.rows {
		cells := m.row(i)
		rec := make([]string, len(cells))
		for k, v := range cells {
			rec[k] = formatCell(v)
		}
		records = append(records, rec)
	}
	records = append(records, []string{}, []string{"Content"}, []string{m.report.Content})

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m matrix) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Report", m.report.Title},
		{"Job", m.job.Title},
		{"Generated", m.report.CreatedAt.UTC().Format(time.RFC3339)},
		{"Source", string(m.report.GeneratedBy)},
		{"Summary", m.report.Summary},
		{"Content", m.report.Content},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(scoresSheet); err != nil {
		return nil, err
	}
	header := m.header()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := setRow(f, scoresSheet, 1, cells); err != nil {
		return nil, err
	}
	for i := range m.rows {
		if err := setRow(f, scoresSheet, i+2, m.row(i)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%.1f", x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func exportName(rep report.Report) string {
	base := strings.Trim(filenameUnsafe.ReplaceAllString(strings.ToLower(rep.Title), "-"), "-")
	if base == "" {
		base = "report"
	}
	return base + "-" + rep.ID.String()[:8]
}
