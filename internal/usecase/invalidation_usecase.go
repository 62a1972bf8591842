package usecase

import (
	"context"

	"research-match/internal/domain/matching"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvalidationUsecase interface {
	StudentProfileChanged(ctx context.Context, studentID uuid.UUID) error
	ProjectChanged(ctx context.Context, projectID uuid.UUID) error
}

// Invalidation is the profile-mutation notifier boundary. Every mutation
// path (profile create/update, experience add/update/delete, project edits)
// must call through here synchronously before returning to its caller: a
// missed call can surface outdated matched skills to a reviewer, which is a
// correctness bug, not a performance issue.
type Invalidation struct {
	scores  matching.ScoreCache
	batches matching.BatchCache
	logger  *zap.Logger
}

func NewInvalidationUsecase(scores matching.ScoreCache, batches matching.BatchCache, logger *zap.Logger) *Invalidation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidation{scores: scores, batches: batches, logger: logger}
}

func (u *Invalidation) StudentProfileChanged(ctx context.Context, studentID uuid.UUID) error {
	if studentID == uuid.Nil {
		return ErrInvalidInput
	}

	if err := u.scores.InvalidateByStudent(ctx, studentID); err != nil {
		u.logger.Error("score cache invalidation failed", zap.String("student_id", studentID.String()), zap.Error(err))
		return ErrInternal
	}
	// Project-keyed batch entries that embed this student are left to their
	// TTL; only student-keyed batches are dropped here.
	if err := u.batches.InvalidateByStudent(ctx, studentID); err != nil {
		u.logger.Error("batch cache invalidation failed", zap.String("student_id", studentID.String()), zap.Error(err))
		return ErrInternal
	}

	u.logger.Info("caches invalidated for student", zap.String("student_id", studentID.String()))
	return nil
}

func (u *Invalidation) ProjectChanged(ctx context.Context, projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return ErrInvalidInput
	}

	if err := u.scores.InvalidateByProject(ctx, projectID); err != nil {
		u.logger.Error("score cache invalidation failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return ErrInternal
	}
	if err := u.batches.InvalidateByProject(ctx, projectID); err != nil {
		u.logger.Error("batch cache invalidation failed", zap.String("project_id", projectID.String()), zap.Error(err))
		return ErrInternal
	}

	u.logger.Info("caches invalidated for project", zap.String("project_id", projectID.String()))
	return nil
}
