package handler

import (
	"context"
	"errors"
	"strconv"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/pkg/response"
	ucrequirement "hireflow/internal/usecase/requirement"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RequirementUsecase interface {
	List(ctx context.Context, userID, jobID uuid.UUID) ([]job.Requirement, error)
	Add(ctx context.Context, userID, jobID uuid.UUID, in ucrequirement.Input) (job.Requirement, error)
	Update(ctx context.Context, userID, jobID, reqID uuid.UUID, in ucrequirement.Input) (job.Requirement, error)
	Delete(ctx context.Context, userID, jobID, reqID uuid.UUID) error
	Generate(ctx context.Context, userID, jobID uuid.UUID, c ai.Completer, persist bool) ([]job.Requirement, error)
}

type RequirementHandler struct {
	uc RequirementUsecase
	ai CompleterResolver
}

type requirementRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	IsRequired  bool   `json:"is_required"`
}

func NewRequirementHandler(uc RequirementUsecase, resolver CompleterResolver) *RequirementHandler {
	return &RequirementHandler{uc: uc, ai: resolver}
}

func (h *RequirementHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs/:id/requirements", h.List)
	r.Post("/jobs/:id/requirements", h.Add)
	r.Post("/jobs/:id/requirements/generate", h.Generate)
	r.Put("/jobs/:id/requirements/:reqId", h.Update)
	r.Delete("/jobs/:id/requirements/:reqId", h.Delete)
}

func (h *RequirementHandler) List(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID, jobID)
	if err != nil {
		return mapRequirementUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRequirementResponses(items))
}

func (h *RequirementHandler) Add(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	var req requirementRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	created, err := h.uc.Add(c.Context(), userID, jobID, ucrequirement.Input(req))
	if err != nil {
		return mapRequirementUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewRequirementResponse(created))
}

func (h *RequirementHandler) Update(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "reqId")
	if err != nil {
		return err
	}

	var req requirementRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	updated, err := h.uc.Update(c.Context(), userID, jobID, reqID, ucrequirement.Input(req))
	if err != nil {
		return mapRequirementUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRequirementResponse(updated))
}

func (h *RequirementHandler) Delete(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	reqID, err := uuidParam(c, "reqId")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, jobID, reqID); err != nil {
		return mapRequirementUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// Generate proposes requirements. They are only stored with ?persist=true,
// which replaces the job's current set.
func (h *RequirementHandler) Generate(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	persist := false
	if v := c.Query("persist"); v != "" {
		persist, err = strconv.ParseBool(v)
		if err != nil {
			return badRequest(err)
		}
	}

	items, err := h.uc.Generate(c.Context(), userID, jobID, completerFor(c, h.ai), persist)
	if err != nil {
		return mapRequirementUsecaseError(err)
	}
	status, msg := fiber.StatusOK, response.MessageOK
	if persist {
		status, msg = fiber.StatusCreated, response.MessageCreated
	}
	return response.Success(c, status, msg, dto.NewRequirementResponses(items))
}

func mapRequirementUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, ai.ErrNoCredential):
		return middleware.NewAppError(fiber.StatusPreconditionFailed, "No AI API key configured", nil, err)
	case errors.Is(err, ucrequirement.ErrGenerateRequirements):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Could not generate requirements from the AI reply", nil, err)
	case errors.Is(err, ucrequirement.ErrRequirementNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Requirement not found", nil, err)
	case errors.Is(err, ucrequirement.ErrRequirementInUse):
		return middleware.NewAppError(fiber.StatusConflict, "Requirement is referenced by candidate scores", nil, err)
	case errors.Is(err, ucrequirement.ErrInvalidInput):
		return badRequest(err)
	default:
		return internalError(err)
	}
}
