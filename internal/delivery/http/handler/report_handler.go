package handler

import (
	"context"
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain"
	"hireflow/internal/domain/report"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/pkg/response"
	ucreport "hireflow/internal/usecase/report"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ReportUsecase interface {
	Generate(ctx context.Context, userID, jobID uuid.UUID, in ucreport.GenerateInput, c ai.Completer) (report.Report, domain.Outcome, error)
	Get(ctx context.Context, userID, id uuid.UUID) (report.Report, error)
	List(ctx context.Context, userID, jobID uuid.UUID) ([]report.Report, error)
	Export(ctx context.Context, userID, reportID uuid.UUID, format ucreport.Format) (ucreport.Export, error)
}

type ReportHandler struct {
	uc ReportUsecase
	ai CompleterResolver
}

type generateReportRequest struct {
	CandidateIDs     []uuid.UUID `json:"candidate_ids"`
	AdditionalPrompt string      `json:"additional_prompt"`
}

func NewReportHandler(uc ReportUsecase, resolver CompleterResolver) *ReportHandler {
	return &ReportHandler{uc: uc, ai: resolver}
}

func (h *ReportHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs/:id/reports", h.List)
	r.Post("/jobs/:id/reports", h.Generate)
	r.Get("/reports/:id", h.Get)
	r.Get("/reports/:id/export", h.Export)
}

func (h *ReportHandler) List(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID, jobID)
	if err != nil {
		return mapReportUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewReportResponses(items))
}

// Generate always stores a new report. Without an AI reply the report is
// assembled locally from the stored scores.
func (h *ReportHandler) Generate(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	var req generateReportRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}
	if len(req.CandidateIDs) == 0 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Select at least one candidate", nil, nil)
	}

	rep, outcome, err := h.uc.Generate(c.Context(), userID, jobID, ucreport.GenerateInput{
		CandidateIDs:     req.CandidateIDs,
		AdditionalPrompt: req.AdditionalPrompt,
	}, completerFor(c, h.ai))
	if err != nil {
		return mapReportUsecaseError(err)
	}
	return withOutcome(c, fiber.StatusCreated, dto.NewReportResponse(rep), outcome)
}

func (h *ReportHandler) Get(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	rep, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapReportUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewReportResponse(rep))
}

// Export downloads the report with its score matrix; ?format=csv (default)
// or xlsx.
func (h *ReportHandler) Export(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	format := ucreport.Format(c.Query("format", string(ucreport.FormatCSV)))
	out, err := h.uc.Export(c.Context(), userID, id, format)
	if err != nil {
		return mapReportUsecaseError(err)
	}
	return response.Attachment(c, out.Filename, out.ContentType, out.Body)
}

func mapReportUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, ucreport.ErrReportNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Report not found", nil, err)
	case errors.Is(err, ucreport.ErrNoValidCandidates):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "No valid candidates selected for this job", nil, err)
	case errors.Is(err, ucreport.ErrUnsupportedFormat):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unsupported export format", nil, err)
	case errors.Is(err, ucreport.ErrInvalidInput):
		return badRequest(err)
	default:
		return internalError(err)
	}
}
