package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain"
	"hireflow/internal/infrastructure/ai"
	"hireflow/internal/pkg/response"
	jobuc "hireflow/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// HeaderAIKey carries a per-request chat completion key that overrides the
// server credential for that request only.
const HeaderAIKey = "X-AI-API-Key"

// CompleterResolver picks the Completer for one request; nil means no
// credential is available.
type CompleterResolver interface {
	Resolve(override string) ai.Completer
}

func completerFor(c fiber.Ctx, r CompleterResolver) ai.Completer {
	if r == nil {
		return nil
	}
	return r.Resolve(c.Get(HeaderAIKey))
}

func currentUser(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name), nil, err)
	}
	return id, nil
}

// userAndParam resolves the caller and one path id, the prologue of most
// protected routes.
func userAndParam(c fiber.Ctx, name string) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := uuidParam(c, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}

func internalError(err error) error {
	return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
}

// jobError maps the ownership failure every job-scoped usecase can return,
// or returns nil for anything else.
func jobError(err error) error {
	if errors.Is(err, jobuc.ErrJobNotFound) {
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	}
	return nil
}

// readFiles loads the named multipart field. Each file is read up to limit+1
// bytes so oversized uploads are still detectable downstream.
func readFiles(c fiber.Ctx, field string, limit int64) ([]namedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, badRequest(err)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, fmt.Sprintf("No files in field %q", field), nil, nil)
	}

	out := make([]namedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readFile(fh, limit)
		if err != nil {
			return nil, badRequest(err)
		}
		out = append(out, namedFile{
			name:        fh.Filename,
			contentType: fh.Header.Get(fiber.HeaderContentType),
			data:        data,
		})
	}
	return out, nil
}

type namedFile struct {
	name        string
	contentType string
	data        []byte
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if limit <= 0 {
		return io.ReadAll(f)
	}
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// withOutcome renders a result produced alongside best-effort writes.
func withOutcome(c fiber.Ctx, status int, result interface{}, outcome domain.Outcome) error {
	msg := response.MessageOK
	if status == fiber.StatusCreated {
		msg = response.MessageCreated
	}
	if outcome.HasFailures() {
		msg = response.MessagePartial
	}
	if outcome.Succeeded == nil {
		outcome.Succeeded = []string{}
	}
	if outcome.Failed == nil {
		outcome.Failed = []domain.Failure{}
	}
	return response.Success(c, status, msg, response.Partial{Result: result, Outcome: outcome})
}
