package matching

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultWorkers     = 8
	defaultTaskTimeout = 20 * time.Second
	defaultModelTTL    = 6 * time.Hour
	defaultFallbackTTL = 10 * time.Minute
	defaultBatchTTL    = 30 * time.Minute
)

// EngineOptions tunes fan-out and cache freshness. Zero values fall back to
// the package defaults.
type EngineOptions struct {
	Workers     int
	TaskTimeout time.Duration
	ModelTTL    time.Duration
	FallbackTTL time.Duration
	BatchTTL    time.Duration
}

// Engine orchestrates pair scoring and two-sided ranking with cache-aside
// reads, bounded parallel fan-out and fallback-on-failure. A scoring request
// can only fail with a not-found or cancellation error; model flakiness is
// absorbed into fallback-quality results tagged SourceFallback.
type Engine struct {
	model    ModelScorer
	fallback RuleScorer
	scores   ScoreCache
	batches  BatchCache
	students StudentSource
	projects ProjectSource

	workers     int
	taskTimeout time.Duration
	modelTTL    time.Duration
	fallbackTTL time.Duration
	batchTTL    time.Duration

	flight singleflight.Group
	logger *zap.Logger
}

func NewEngine(
	model ModelScorer,
	fallback RuleScorer,
	scores ScoreCache,
	batches BatchCache,
	students StudentSource,
	projects ProjectSource,
	opts EngineOptions,
	logger *zap.Logger,
) *Engine {
	if fallback == nil {
		fallback = NewFallback()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = defaultTaskTimeout
	}
	if opts.ModelTTL <= 0 {
		opts.ModelTTL = defaultModelTTL
	}
	if opts.FallbackTTL <= 0 {
		opts.FallbackTTL = defaultFallbackTTL
	}
	if opts.BatchTTL <= 0 {
		opts.BatchTTL = defaultBatchTTL
	}

	return &Engine{
		model:       model,
		fallback:    fallback,
		scores:      scores,
		batches:     batches,
		students:    students,
		projects:    projects,
		workers:     opts.Workers,
		taskTimeout: opts.TaskTimeout,
		modelTTL:    opts.ModelTTL,
		fallbackTTL: opts.FallbackTTL,
		batchTTL:    opts.BatchTTL,
		logger:      logger,
	}
}

// ScorePair returns the compatibility score for one (student, project)
// combination, computing and caching it on a miss.
func (e *Engine) ScorePair(ctx context.Context, studentID, projectID uuid.UUID) (MatchScore, error) {
	student, err := e.students.FindByID(ctx, studentID)
	if err != nil {
		return MatchScore{}, err
	}
	project, err := e.projects.FindByID(ctx, projectID)
	if err != nil {
		return MatchScore{}, err
	}
	return e.scorePair(ctx, student, project)
}

// RankProjectsForStudent scores the student against every active project in
// parallel and returns the top limit matches, ties kept in listing order.
// No active projects is an empty result, not an error.
func (e *Engine) RankProjectsForStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]RankedProject, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	student, err := e.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	projects, err := e.projects.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []RankedProject{}, nil
	}

	results := make([]RankedProject, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, p := range projects {
		g.Go(func() error {
			score, err := e.scorePair(gctx, student, p)
			if err != nil {
				return err
			}
			results[i] = RankedProject{Project: p, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.Overall > results[j].Score.Overall
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// RankStudentsForProject serves ranked candidates from the batch cache when
// fresh, otherwise fans out over every student profile, caches the full
// sorted list and returns the top limit. A zero-candidate result is never
// cached so newly registered students show up immediately.
func (e *Engine) RankStudentsForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]RankedStudent, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	if e.batches != nil {
		cached, ok, err := e.batches.GetProjectRanking(ctx, projectID)
		if err != nil {
			e.logger.Warn("batch cache read failed", zap.Error(err))
		} else if ok {
			e.logger.Debug("batch cache hit", zap.String("project_id", projectID.String()))
			return truncateRanking(cached, limit), nil
		}
	}

	project, err := e.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	students, err := e.students.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return []RankedStudent{}, nil
	}

	results := make([]RankedStudent, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, s := range students {
		g.Go(func() error {
			score, err := e.scorePair(gctx, s, project)
			if err != nil {
				return err
			}
			results[i] = RankedStudent{StudentID: s.ID, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Cancelled batches are discarded, never partially cached.
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.Overall > results[j].Score.Overall
	})

	if e.batches != nil {
		if err := e.batches.PutProjectRanking(ctx, projectID, results, e.batchTTL); err != nil {
			e.logger.Warn("batch cache write failed", zap.Error(err))
		}
	}
	return truncateRanking(results, limit), nil
}

func (e *Engine) scorePair(ctx context.Context, student StudentProfile, project Project) (MatchScore, error) {
	if e.scores != nil {
		score, ok, err := e.scores.Get(ctx, student.ID, project.ID)
		if err != nil {
			e.logger.Warn("score cache read failed", zap.Error(err))
		} else if ok {
			e.logger.Debug("score cache hit",
				zap.String("student_id", student.ID.String()),
				zap.String("project_id", project.ID.String()),
			)
			return score, nil
		}
	}

	// Concurrent misses for the same pair collapse into one computation.
	key := student.ID.String() + ":" + project.ID.String()
	v, err, _ := e.flight.Do(key, func() (any, error) {
		return e.computeAndStore(ctx, student, project)
	})
	if err != nil {
		return MatchScore{}, err
	}
	return v.(MatchScore), nil
}

func (e *Engine) computeAndStore(ctx context.Context, student StudentProfile, project Project) (MatchScore, error) {
	score, err := e.compute(ctx, student, project)
	if err != nil {
		return MatchScore{}, err
	}

	if e.scores != nil {
		ttl := e.modelTTL
		if score.Source == SourceFallback {
			ttl = e.fallbackTTL
		}
		if err := e.scores.Put(ctx, student.ID, project.ID, score, ttl); err != nil {
			e.logger.Warn("score cache write failed", zap.Error(err))
		}
	}
	return score, nil
}

// compute runs the model path under its own timeout and degrades to the
// rule-based scorer on any model failure. Only caller cancellation is
// surfaced as an error.
func (e *Engine) compute(ctx context.Context, student StudentProfile, project Project) (MatchScore, error) {
	if e.model != nil {
		taskCtx, cancel := context.WithTimeout(ctx, e.taskTimeout)
		score, err := e.model.Score(taskCtx, student, project)
		cancel()
		if err == nil {
			score.Source = SourceModel
			return score, nil
		}
		if ctx.Err() != nil {
			return MatchScore{}, ctx.Err()
		}
		e.logger.Debug("model scorer failed, using fallback",
			zap.String("student_id", student.ID.String()),
			zap.String("project_id", project.ID.String()),
			zap.Error(err),
		)
	}
	if ctx.Err() != nil {
		return MatchScore{}, ctx.Err()
	}
	return e.fallback.Score(student, project), nil
}

func truncateRanking(ranking []RankedStudent, limit int) []RankedStudent {
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	out := make([]RankedStudent, len(ranking))
	copy(out, ranking)
	return out
}
