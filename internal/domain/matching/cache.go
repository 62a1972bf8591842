package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CacheStats struct {
	TotalEntries   int `json:"total_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

// ScoreCache memoizes pair scores. Expiry is lazy: an expired entry behaves
// as a miss on Get but still counts towards Stats until something deletes it.
type ScoreCache interface {
	Get(ctx context.Context, studentID, projectID uuid.UUID) (MatchScore, bool, error)
	Put(ctx context.Context, studentID, projectID uuid.UUID, score MatchScore, ttl time.Duration) error
	Invalidate(ctx context.Context, studentID, projectID uuid.UUID) error
	InvalidateByStudent(ctx context.Context, studentID uuid.UUID) error
	InvalidateByProject(ctx context.Context, projectID uuid.UUID) error
	Stats(ctx context.Context) (CacheStats, error)
	ClearAll(ctx context.Context) error
}

// BatchCache holds full ranked candidate lists per project. Entries are
// sorted descending by score at write time; truncation to a caller limit
// happens at read time so larger limits never miss candidates.
type BatchCache interface {
	GetProjectRanking(ctx context.Context, projectID uuid.UUID) ([]RankedStudent, bool, error)
	PutProjectRanking(ctx context.Context, projectID uuid.UUID, ranking []RankedStudent, ttl time.Duration) error
	InvalidateByStudent(ctx context.Context, studentID uuid.UUID) error
	InvalidateByProject(ctx context.Context, projectID uuid.UUID) error
	Stats(ctx context.Context) (CacheStats, error)
	ClearAll(ctx context.Context) error
}
