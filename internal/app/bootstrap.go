package app

import (
	"fmt"
	"strings"

	"research-match/internal/config"
	"research-match/internal/delivery/http/handler"
	"research-match/internal/delivery/http/middleware"
	"research-match/internal/delivery/http/routes"
	pkgjwt "research-match/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
}

func Bootstrap(cfg config.Config) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	errMw := middleware.NewErrorMiddleware(c.Logger)
	f.Use(errMw.Middleware())

	var adminAuth *middleware.AdminAuthMiddleware
	if cfg.Auth.AdminJWTSecret != "" {
		jwtSvc := pkgjwt.NewHMACService(cfg.Auth.AdminJWTSecret, cfg.Auth.AccessExpiresIn)
		adminAuth = middleware.NewAdminAuthMiddleware(jwtSvc)
	}

	var cachePinger handler.Pinger
	if c.Redis != nil {
		cachePinger = c.Redis
	}

	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.DB, cachePinger),
		handler.NewMatchHandler(c.MatchUC),
		handler.NewInvalidationHandler(c.InvalidationUC),
		handler.NewCacheAdminHandler(c.CacheAdminUC),
		adminAuth,
		c.Logger,
	)
	registry.Register(f)

	return &App{Fiber: f}, c.Close, nil
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
