package handler

import (
	"errors"

	"research-match/internal/delivery/http/middleware"
	"research-match/internal/pkg/response"
	"research-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// InvalidationHandler is the hook the profile/project mutation services call
// after committing a change, so stale scores never outlive a mutation by
// more than the cache TTL.
type InvalidationHandler struct {
	uc usecase.InvalidationUsecase
}

func NewInvalidationHandler(uc usecase.InvalidationUsecase) *InvalidationHandler {
	return &InvalidationHandler{uc: uc}
}

func (h *InvalidationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/students/:student_id/invalidate", h.StudentChanged)
	r.Post("/projects/:project_id/invalidate", h.ProjectChanged)
}

func (h *InvalidationHandler) StudentChanged(c fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid student id", nil, err)
	}

	if err := h.uc.StudentProfileChanged(c.Context(), studentID); err != nil {
		return mapInvalidationError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *InvalidationHandler) ProjectChanged(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid project id", nil, err)
	}

	if err := h.uc.ProjectChanged(c.Context(), projectID); err != nil {
		return mapInvalidationError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func mapInvalidationError(err error) error {
	if errors.Is(err, usecase.ErrInvalidInput) {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
}
