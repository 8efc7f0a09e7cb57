package handler

import (
	"context"
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain"
	"hireflow/internal/domain/candidate"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/pkg/response"
	uccandidate "hireflow/internal/usecase/candidate"
	"hireflow/internal/usecase/scoring"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type CandidateUsecase interface {
	Upload(ctx context.Context, userID, jobID uuid.UUID, uploads []uccandidate.Upload) ([]candidate.Candidate, domain.Outcome, error)
	ListByJob(ctx context.Context, userID, jobID uuid.UUID) ([]candidate.Candidate, error)
	Get(ctx context.Context, userID, id uuid.UUID) (uccandidate.Detail, error)
	Update(ctx context.Context, userID, id uuid.UUID, in uccandidate.UpdateInput) (candidate.Candidate, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type ScoringUsecase interface {
	ScoreCandidate(ctx context.Context, userID, candidateID uuid.UUID, c ai.Completer) (scoring.Result, error)
}

type CandidateHandler struct {
	uc       CandidateUsecase
	scorer   ScoringUsecase
	ai       CompleterResolver
	maxBytes int64
}

type updateCandidateRequest struct {
	IsStarred *bool   `json:"is_starred"`
	Status    *string `json:"status"`
}

func NewCandidateHandler(uc CandidateUsecase, scorer ScoringUsecase, resolver CompleterResolver, maxBytes int64) *CandidateHandler {
	return &CandidateHandler{uc: uc, scorer: scorer, ai: resolver, maxBytes: maxBytes}
}

func (h *CandidateHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs/:id/candidates", h.List)
	r.Post("/jobs/:id/candidates", h.Upload)
	r.Get("/candidates/:id", h.Get)
	r.Patch("/candidates/:id", h.Update)
	r.Delete("/candidates/:id", h.Delete)
	r.Post("/candidates/:id/score", h.Score)
}

func (h *CandidateHandler) List(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.ListByJob(c.Context(), userID, jobID)
	if err != nil {
		return mapCandidateUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCandidateResponses(items))
}

// Upload ingests every file of the multipart "files" field. Files that
// cannot be ingested are listed in the outcome; the request only fails when
// none could be.
func (h *CandidateHandler) Upload(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	files, err := readFiles(c, "files", h.maxBytes)
	if err != nil {
		return err
	}
	uploads := make([]uccandidate.Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, uccandidate.Upload{Filename: f.name, Data: f.data})
	}

	created, outcome, err := h.uc.Upload(c.Context(), userID, jobID, uploads)
	if err != nil {
		return mapCandidateUsecaseError(err)
	}
	status := fiber.StatusCreated
	if len(created) == 0 {
		status = fiber.StatusUnprocessableEntity
	}
	return withOutcome(c, status, dto.NewCandidateResponses(created), outcome)
}

func (h *CandidateHandler) Get(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapCandidateUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CandidateDetailResponse{
		CandidateResponse: dto.NewCandidateResponse(d.Candidate),
		Analysis:          dto.NewAnalysisResponse(d.Analysis),
	})
}

func (h *CandidateHandler) Update(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	var req updateCandidateRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.Update(c.Context(), userID, id, uccandidate.UpdateInput{
		IsStarred: req.IsStarred,
		Status:    req.Status,
	})
	if err != nil {
		return mapCandidateUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCandidateResponse(updated))
}

func (h *CandidateHandler) Delete(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapCandidateUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// Score runs one analysis pass. Without a usable AI reply the empty fallback
// is returned unsaved and the candidate stays unprocessed.
func (h *CandidateHandler) Score(c fiber.Ctx) error {
	userID, id, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	res, err := h.scorer.ScoreCandidate(c.Context(), userID, id, completerFor(c, h.ai))
	if err != nil {
		return mapScoringUsecaseError(err)
	}
	msg := response.MessageOK
	if res.Fallback {
		msg = "AI analysis unavailable; scores not saved"
	}
	return response.Success(c, fiber.StatusOK, msg, dto.ScoreResultResponse{
		Candidate: dto.NewCandidateResponse(res.Candidate),
		Analysis:  dto.NewAnalysisResponse(res.Analysis),
		Fallback:  res.Fallback,
		Persisted: res.Persisted,
	})
}

func mapCandidateUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, uccandidate.ErrCandidateNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Candidate not found", nil, err)
	case errors.Is(err, uccandidate.ErrInvalidStatus):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid candidate status", nil, err)
	case errors.Is(err, uccandidate.ErrInvalidInput):
		return badRequest(err)
	default:
		return internalError(err)
	}
}

func mapScoringUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, scoring.ErrCandidateNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Candidate not found", nil, err)
	case errors.Is(err, scoring.ErrNoRequirements):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Job has no requirements to score against", nil, err)
	case errors.Is(err, scoring.ErrEmptyResume):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Candidate has no readable résumé text", nil, err)
	default:
		return internalError(err)
	}
}
