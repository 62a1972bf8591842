package handler

import (
	"research-match/internal/delivery/http/dto"
	"research-match/internal/delivery/http/middleware"
	"research-match/internal/pkg/response"
	"research-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type CacheAdminHandler struct {
	uc usecase.CacheAdminUsecase
}

func NewCacheAdminHandler(uc usecase.CacheAdminUsecase) *CacheAdminHandler {
	return &CacheAdminHandler{uc: uc}
}

func (h *CacheAdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/cache/stats", h.Stats)
	r.Post("/cache/clear", h.ClearAll)
}

func (h *CacheAdminHandler) Stats(c fiber.Ctx) error {
	report, err := h.uc.Stats(c.Context())
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}

	out := dto.CacheStatsResponse{
		Scores: dto.CacheSideStatsResponse{
			TotalEntries:   report.Scores.TotalEntries,
			ExpiredEntries: report.Scores.ExpiredEntries,
		},
		Batches: dto.CacheSideStatsResponse{
			TotalEntries:   report.Batches.TotalEntries,
			ExpiredEntries: report.Batches.ExpiredEntries,
		},
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *CacheAdminHandler) ClearAll(c fiber.Ctx) error {
	if err := h.uc.ClearAll(c.Context()); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
