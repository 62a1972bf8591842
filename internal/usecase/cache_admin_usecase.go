package usecase

import (
	"context"

	"research-match/internal/domain/matching"
)

type CacheStatsReport struct {
	Scores  matching.CacheStats `json:"scores"`
	Batches matching.CacheStats `json:"batches"`
}

type CacheAdminUsecase interface {
	Stats(ctx context.Context) (CacheStatsReport, error)
	ClearAll(ctx context.Context) error
}

// CacheAdmin exposes the operator-facing cache surface. Authorization is the
// delivery layer's job; this type performs none.
type CacheAdmin struct {
	scores  matching.ScoreCache
	batches matching.BatchCache
}

func NewCacheAdminUsecase(scores matching.ScoreCache, batches matching.BatchCache) *CacheAdmin {
	return &CacheAdmin{scores: scores, batches: batches}
}

func (u *CacheAdmin) Stats(ctx context.Context) (CacheStatsReport, error) {
	scoreStats, err := u.scores.Stats(ctx)
	if err != nil {
		return CacheStatsReport{}, ErrInternal
	}
	batchStats, err := u.batches.Stats(ctx)
	if err != nil {
		return CacheStatsReport{}, ErrInternal
	}
	return CacheStatsReport{Scores: scoreStats, Batches: batchStats}, nil
}

func (u *CacheAdmin) ClearAll(ctx context.Context) error {
	if err := u.scores.ClearAll(ctx); err != nil {
		return ErrInternal
	}
	if err := u.batches.ClearAll(ctx); err != nil {
		return ErrInternal
	}
	return nil
}
