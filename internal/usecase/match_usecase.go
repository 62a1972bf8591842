package usecase

import (
	"context"
	"errors"

	"research-match/internal/domain/matching"

	"github.com/google/uuid"
)

const maxRankLimit = 100

type MatchUsecase interface {
	ScorePair(ctx context.Context, studentID, projectID uuid.UUID) (matching.MatchScore, error)
	RankProjectsForStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]matching.RankedProject, error)
	RankStudentsForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]matching.RankedStudent, error)
}

type Match struct {
	engine *matching.Engine
}

func NewMatchUsecase(engine *matching.Engine) *Match {
	return &Match{engine: engine}
}

func (u *Match) ScorePair(ctx context.Context, studentID, projectID uuid.UUID) (matching.MatchScore, error) {
	if studentID == uuid.Nil || projectID == uuid.Nil {
		return matching.MatchScore{}, ErrInvalidInput
	}

	score, err := u.engine.ScorePair(ctx, studentID, projectID)
	if err != nil {
		return matching.MatchScore{}, mapEngineError(err)
	}
	return score, nil
}

func (u *Match) RankProjectsForStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]matching.RankedProject, error) {
	if studentID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	ranked, err := u.engine.RankProjectsForStudent(ctx, studentID, limit)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return ranked, nil
}

func (u *Match) RankStudentsForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]matching.RankedStudent, error) {
	if projectID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	limit, err := normalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	ranked, err := u.engine.RankStudentsForProject(ctx, projectID, limit)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return ranked, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit < 1 {
		return 0, ErrInvalidInput
	}
	if limit > maxRankLimit {
		limit = maxRankLimit
	}
	return limit, nil
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, matching.ErrStudentNotFound):
		return ErrStudentNotFound
	case errors.Is(err, matching.ErrProjectNotFound):
		return ErrProjectNotFound
	case errors.Is(err, matching.ErrInvalidLimit):
		return ErrInvalidInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ErrInternal
	}
}
