package handler

import (
	"context"
	"time"

	"research-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"db": "ok", "cache": "ok"}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status["db"] = "unreachable"
			healthy = false
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			// The engine degrades to the in-process store, so a cache
			// outage is reported but not fatal.
			status["cache"] = "unreachable"
		}
	}

	code := fiber.StatusOK
	if !healthy {
		code = fiber.StatusServiceUnavailable
	}
	return response.Success(c, code, response.MessageOK, status)
}
