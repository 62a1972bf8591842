package routes

import (
	"research-match/internal/delivery/http/handler"
	"research-match/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Registry struct {
	health       *handler.HealthHandler
	match        *handler.MatchHandler
	invalidation *handler.InvalidationHandler
	cacheAdmin   *handler.CacheAdminHandler
	adminAuth    *middleware.AdminAuthMiddleware

	logger *zap.Logger
}

func NewRegistry(
	health *handler.HealthHandler,
	match *handler.MatchHandler,
	invalidation *handler.InvalidationHandler,
	cacheAdmin *handler.CacheAdminHandler,
	adminAuth *middleware.AdminAuthMiddleware,
	logger *zap.Logger,
) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		health:       health,
		match:        match,
		invalidation: invalidation,
		cacheAdmin:   cacheAdmin,
		adminAuth:    adminAuth,
		logger:       logger,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	v1 := app.Group("/api").Group("/v1")
	r.match.RegisterRoutes(v1)
	r.invalidation.RegisterRoutes(v1)

	// The admin surface stays off entirely when no secret is configured.
	if r.adminAuth == nil {
		r.logger.Warn("ADMIN_JWT_SECRET not set, cache admin endpoints disabled")
		return
	}
	admin := v1.Group("/admin", r.adminAuth.Middleware())
	r.cacheAdmin.RegisterRoutes(admin)
}
