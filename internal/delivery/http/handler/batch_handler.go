package handler

import (
	"context"
	"errors"

	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/job"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase/batch"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type BatchRunner interface {
	Start(ctx context.Context, userID uuid.UUID, j job.Job, c ai.Completer) (batch.Progress, error)
	Progress(ctx context.Context, jobID uuid.UUID) (batch.Progress, error)
	Cancel(jobID uuid.UUID) error
}

type JobLoader interface {
	Owned(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
	WithRequirements(ctx context.Context, userID, jobID uuid.UUID) (job.Job, error)
}

type BatchHandler struct {
	runner BatchRunner
	jobs   JobLoader
	ai     CompleterResolver
}

func NewBatchHandler(runner BatchRunner, jobs JobLoader, resolver CompleterResolver) *BatchHandler {
	return &BatchHandler{runner: runner, jobs: jobs, ai: resolver}
}

func (h *BatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/jobs/:id/batch", h.Start)
	r.Get("/jobs/:id/batch", h.Progress)
	r.Delete("/jobs/:id/batch", h.Cancel)
}

// Start scores every unprocessed candidate of the job in the background and
// answers 202 with the initial snapshot. Progress is pushed over /ws.
func (h *BatchHandler) Start(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	j, err := h.jobs.WithRequirements(c.Context(), userID, jobID)
	if err != nil {
		return mapBatchError(err)
	}
	if len(j.Requirements) == 0 {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Job has no requirements to score against", nil, nil)
	}
	completer := completerFor(c, h.ai)
	if completer == nil {
		return mapBatchError(ai.ErrNoCredential)
	}

	p, err := h.runner.Start(c.Context(), userID, j, completer)
	if err != nil {
		return mapBatchError(err)
	}
	return response.Success(c, fiber.StatusAccepted, response.MessageAccepted, p)
}

func (h *BatchHandler) Progress(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.jobs.Owned(c.Context(), userID, jobID); err != nil {
		return mapBatchError(err)
	}

	p, err := h.runner.Progress(c.Context(), jobID)
	if err != nil {
		return mapBatchError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

// Cancel stops the run before its next candidate; the one in flight still
// completes.
func (h *BatchHandler) Cancel(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.jobs.Owned(c.Context(), userID, jobID); err != nil {
		return mapBatchError(err)
	}

	if err := h.runner.Cancel(jobID); err != nil {
		return mapBatchError(err)
	}
	return response.Success(c, fiber.StatusAccepted, response.MessageAccepted, nil)
}

func mapBatchError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, ai.ErrNoCredential):
		return middleware.NewAppError(fiber.StatusPreconditionFailed, "No AI API key configured", nil, err)
	case errors.Is(err, batch.ErrBatchRunning):
		return middleware.NewAppError(fiber.StatusConflict, "A batch is already running for this job", nil, err)
	case errors.Is(err, batch.ErrNotRunning):
		return middleware.NewAppError(fiber.StatusConflict, "No batch is running for this job", nil, err)
	case errors.Is(err, batch.ErrNoProgress):
		return middleware.NewAppError(fiber.StatusNotFound, "No batch has run for this job", nil, err)
	default:
		return internalError(err)
	}
}
