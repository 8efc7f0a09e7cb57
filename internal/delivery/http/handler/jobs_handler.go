package handler

import (
	"context"
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/job"
	"hireflow/internal/pkg/response"
	jobuc "hireflow/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type JobUsecase interface {
	Create(ctx context.Context, userID uuid.UUID, in jobuc.Input) (job.Job, error)
	List(ctx context.Context, userID uuid.UUID) ([]job.Job, error)
	Get(ctx context.Context, userID, jobID uuid.UUID) (jobuc.Detail, error)
	Update(ctx context.Context, userID, jobID uuid.UUID, in jobuc.Input) (job.Job, error)
	Delete(ctx context.Context, userID, jobID uuid.UUID) error

	ListContextFiles(ctx context.Context, userID, jobID uuid.UUID) ([]job.ContextFile, error)
	AddContextFile(ctx context.Context, userID, jobID uuid.UUID, name, contentType string, data []byte) (job.ContextFile, error)
	DeleteContextFile(ctx context.Context, userID, jobID, fileID uuid.UUID) error
}

type JobsHandler struct {
	uc       JobUsecase
	maxBytes int64
}

type jobRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Department  string `json:"department"`
	Salary      string `json:"salary"`
}

func (r jobRequest) input() jobuc.Input {
	return jobuc.Input{
		Title:       r.Title,
		Company:     r.Company,
		Description: r.Description,
		Location:    r.Location,
		Department:  r.Department,
		Salary:      r.Salary,
	}
}

// NewJobsHandler serves jobs and their context documents; maxBytes caps a
// single context upload.
func NewJobsHandler(uc JobUsecase, maxBytes int64) *JobsHandler {
	return &JobsHandler{uc: uc, maxBytes: maxBytes}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs", h.List)
	r.Post("/jobs", h.Create)
	r.Get("/jobs/:id", h.Get)
	r.Put("/jobs/:id", h.Update)
	r.Delete("/jobs/:id", h.Delete)

	r.Get("/jobs/:id/context-files", h.ListContextFiles)
	r.Post("/jobs/:id/context-files", h.AddContextFiles)
	r.Delete("/jobs/:id/context-files/:fileId", h.DeleteContextFile)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponses(items))
}

func (h *JobsHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	j, err := h.uc.Create(c.Context(), userID, req.input())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewJobResponse(j))
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	d, err := h.uc.Get(c.Context(), userID, jobID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.JobDetailResponse{
		JobResponse:  dto.NewJobResponse(d.Job),
		Requirements: dto.NewRequirementResponses(d.Job.Requirements),
		ContextFiles: dto.NewContextFileResponses(d.Job.ContextFiles),
		Candidates:   dto.NewCandidateResponses(d.Candidates),
	})
}

func (h *JobsHandler) Update(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	var req jobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	j, err := h.uc.Update(c.Context(), userID, jobID, req.input())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewJobResponse(j))
}

// Delete removes the job with its requirements, candidates, scores and
// reports.
func (h *JobsHandler) Delete(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, jobID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *JobsHandler) ListContextFiles(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	items, err := h.uc.ListContextFiles(c.Context(), userID, jobID)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewContextFileResponses(items))
}

// AddContextFiles stores every file of the multipart "files" field. The
// first unreadable or unsupported file fails the request; files stored
// before it stay.
func (h *JobsHandler) AddContextFiles(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}

	files, err := readFiles(c, "files", h.maxBytes)
	if err != nil {
		return err
	}

	out := make([]dto.ContextFileResponse, 0, len(files))
	for _, f := range files {
		if h.maxBytes > 0 && int64(len(f.data)) > h.maxBytes {
			return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File too large", map[string]string{"file": f.name}, nil)
		}
		cf, err := h.uc.AddContextFile(c.Context(), userID, jobID, f.name, f.contentType, f.data)
		if err != nil {
			return mapJobUsecaseError(err)
		}
		out = append(out, dto.NewContextFileResponse(cf))
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, out)
}

func (h *JobsHandler) DeleteContextFile(c fiber.Ctx) error {
	userID, jobID, err := userAndParam(c, "id")
	if err != nil {
		return err
	}
	fileID, err := uuidParam(c, "fileId")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteContextFile(c.Context(), userID, jobID, fileID); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func mapJobUsecaseError(err error) error {
	if err == nil {
		return nil
	}
	if e := jobError(err); e != nil {
		return e
	}

	switch {
	case errors.Is(err, jobuc.ErrContextFileNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Context file not found", nil, err)
	case errors.Is(err, jobuc.ErrUnsupportedFile):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, "Unsupported file type", nil, err)
	case errors.Is(err, jobuc.ErrInvalidInput):
		return badRequest(err)
	default:
		return internalError(err)
	}
}
