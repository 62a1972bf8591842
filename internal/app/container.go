package app

import (
	"context"
	"time"

	"research-match/internal/ai/gemini"
	"research-match/internal/cache"
	"research-match/internal/config"
	"research-match/internal/database"
	dbpostgres "research-match/internal/database/postgres"
	"research-match/internal/domain/matching"
	"research-match/internal/logger"
	"research-match/internal/repository"
	"research-match/internal/usecase"

	"go.uber.org/zap"
)

// Container wires the process once at startup. Every component is an
// explicit value passed by interface; nothing here is a package-level
// singleton.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Redis  *cache.Redis

	Engine         *matching.Engine
	MatchUC        usecase.MatchUsecase
	InvalidationUC usecase.InvalidationUsecase
	CacheAdminUC   usecase.CacheAdminUsecase
}

func NewContainer(cfg config.Config) (*Container, error) {
	log, err := logger.New(cfg.App.LogJSON, cfg.App.Debug)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	var (
		scores  matching.ScoreCache
		batches matching.BatchCache
		rdb     *cache.Redis
	)
	rdb, err = cache.NewRedis(cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, using in-process caches", zap.Error(err))
		rdb = nil
		scores = cache.NewMemoryScoreCache()
		batches = cache.NewMemoryBatchCache()
	} else {
		scores = cache.NewRedisScoreCache(rdb)
		batches = cache.NewRedisBatchCache(rdb)
	}

	var model matching.ModelScorer
	if cfg.Gemini.APIKey != "" {
		generator, err := gemini.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		model = gemini.NewScorer(generator, log)
	} else {
		log.Warn("GEMINI_API_KEY not set, scoring runs on the fallback path only")
	}

	students := repository.NewPostgresStudentRepository(db)
	projects := repository.NewPostgresProjectRepository(db)

	engine := matching.NewEngine(
		model,
		matching.NewFallback(),
		scores,
		batches,
		students,
		projects,
		matching.EngineOptions{
			Workers:     cfg.Matching.Workers,
			TaskTimeout: cfg.Matching.TaskTimeout,
			ModelTTL:    cfg.Matching.ScoreTTL,
			FallbackTTL: cfg.Matching.FallbackTTL,
			BatchTTL:    cfg.Matching.BatchTTL,
		},
		log,
	)

	return &Container{
		Config:         cfg,
		Logger:         log,
		DB:             db,
		Redis:          rdb,
		Engine:         engine,
		MatchUC:        usecase.NewMatchUsecase(engine),
		InvalidationUC: usecase.NewInvalidationUsecase(scores, batches, log),
		CacheAdminUC:   usecase.NewCacheAdminUsecase(scores, batches),
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
