package handler

import (
	"context"
	"errors"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/response"
	ucprofile "hireflow/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ProfileUsecase interface {
	Get(ctx context.Context, userID uuid.UUID) (user.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, in ucprofile.UpdateInput) (user.Profile, error)
}

type ProfileHandler struct {
	uc ProfileUsecase
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name"`
	CompanyName *string `json:"company_name"`
	Role        *string `json:"role"`
}

func NewProfileHandler(uc ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/profile", h.Get)
	r.Put("/me/profile", h.Update)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	prof, err := h.uc.Get(c.Context(), userID)
	if err != nil {
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(prof))
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	prof, err := h.uc.Update(c.Context(), userID, ucprofile.UpdateInput{
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		Role:        req.Role,
	})
	if err != nil {
		if errors.Is(err, ucprofile.ErrInvalidInput) {
			return badRequest(err)
		}
		return internalError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProfileResponse(prof))
}
