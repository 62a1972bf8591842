package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"research-match/internal/cache"
	"research-match/internal/domain/matching"

	"github.com/google/uuid"
)

type staticStudents struct {
	profiles []matching.StudentProfile
}

func (s *staticStudents) FindByID(_ context.Context, id uuid.UUID) (matching.StudentProfile, error) {
	for _, p := range s.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return matching.StudentProfile{}, matching.ErrStudentNotFound
}

func (s *staticStudents) ListAll(_ context.Context) ([]matching.StudentProfile, error) {
	return s.profiles, nil
}

type staticProjects struct {
	projects []matching.Project
}

func (s *staticProjects) FindByID(_ context.Context, id uuid.UUID) (matching.Project, error) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return matching.Project{}, matching.ErrProjectNotFound
}

func (s *staticProjects) ListActive(_ context.Context) ([]matching.Project, error) {
	return s.projects, nil
}

func newTestMatch(t *testing.T) (*Match, uuid.UUID, uuid.UUID) {
	t.Helper()

	student := matching.StudentProfile{ID: uuid.New(), Skills: []string{"go"}}
	project := matching.Project{ID: uuid.New(), RequiredSkills: []string{"go"}, Status: matching.StatusActive}

	engine := matching.NewEngine(
		nil, // no model scorer, every pair takes the fallback path
		nil,
		cache.NewMemoryScoreCache(),
		cache.NewMemoryBatchCache(),
		&staticStudents{profiles: []matching.StudentProfile{student}},
		&staticProjects{projects: []matching.Project{project}},
		matching.EngineOptions{},
		nil,
	)
	return NewMatchUsecase(engine), student.ID, project.ID
}

func TestMatch_ScorePair(t *testing.T) {
	uc, studentID, projectID := newTestMatch(t)

	score, err := uc.ScorePair(context.Background(), studentID, projectID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if score.Source != matching.SourceFallback {
		t.Fatalf("expected fallback source without a model, got %q", score.Source)
	}
}

func TestMatch_ScorePair_NilIDs(t *testing.T) {
	uc, studentID, projectID := newTestMatch(t)

	if _, err := uc.ScorePair(context.Background(), uuid.Nil, projectID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil student, got %v", err)
	}
	if _, err := uc.ScorePair(context.Background(), studentID, uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil project, got %v", err)
	}
}

func TestMatch_ScorePair_NotFoundMapping(t *testing.T) {
	uc, studentID, projectID := newTestMatch(t)

	if _, err := uc.ScorePair(context.Background(), uuid.New(), projectID); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
	if _, err := uc.ScorePair(context.Background(), studentID, uuid.New()); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestMatch_RankProjectsForStudent_LimitValidation(t *testing.T) {
	uc, studentID, _ := newTestMatch(t)

	if _, err := uc.RankProjectsForStudent(context.Background(), studentID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for limit 0, got %v", err)
	}
	if _, err := uc.RankProjectsForStudent(context.Background(), uuid.Nil, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil id, got %v", err)
	}

	// Oversized limits are capped, not rejected.
	ranked, err := uc.RankProjectsForStudent(context.Background(), studentID, maxRankLimit+50)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}
}

func TestMatch_RankStudentsForProject(t *testing.T) {
	uc, _, projectID := newTestMatch(t)

	ranked, err := uc.RankStudentsForProject(context.Background(), projectID, 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(ranked))
	}

	if _, err := uc.RankStudentsForProject(context.Background(), uuid.New(), 10); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestInvalidation_StudentProfileChanged(t *testing.T) {
	scores := cache.NewMemoryScoreCache()
	batches := cache.NewMemoryBatchCache()
	uc := NewInvalidationUsecase(scores, batches, nil)

	ctx := context.Background()
	studentID, projectID := uuid.New(), uuid.New()
	_ = scores.Put(ctx, studentID, projectID, matching.MatchScore{Overall: 50}, time.Hour)

	if err := uc.StudentProfileChanged(ctx, studentID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok, _ := scores.Get(ctx, studentID, projectID); ok {
		t.Fatal("score survived student invalidation")
	}

	if err := uc.StudentProfileChanged(ctx, uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInvalidation_ProjectChanged(t *testing.T) {
	scores := cache.NewMemoryScoreCache()
	batches := cache.NewMemoryBatchCache()
	uc := NewInvalidationUsecase(scores, batches, nil)

	ctx := context.Background()
	studentID, projectID := uuid.New(), uuid.New()
	_ = scores.Put(ctx, studentID, projectID, matching.MatchScore{Overall: 50}, time.Hour)
	_ = batches.PutProjectRanking(ctx, projectID, []matching.RankedStudent{{StudentID: studentID}}, time.Hour)

	if err := uc.ProjectChanged(ctx, projectID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok, _ := scores.Get(ctx, studentID, projectID); ok {
		t.Fatal("score survived project invalidation")
	}
	if _, ok, _ := batches.GetProjectRanking(ctx, projectID); ok {
		t.Fatal("batch survived project invalidation")
	}
}

func TestCacheAdmin_StatsAndClear(t *testing.T) {
	scores := cache.NewMemoryScoreCache()
	batches := cache.NewMemoryBatchCache()
	uc := NewCacheAdminUsecase(scores, batches)

	ctx := context.Background()
	_ = scores.Put(ctx, uuid.New(), uuid.New(), matching.MatchScore{Overall: 10}, time.Hour)
	_ = batches.PutProjectRanking(ctx, uuid.New(), []matching.RankedStudent{{StudentID: uuid.New()}}, time.Hour)

	report, err := uc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Scores.TotalEntries != 1 || report.Batches.TotalEntries != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if err := uc.ClearAll(ctx); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	report, err = uc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if report.Scores.TotalEntries != 0 || report.Batches.TotalEntries != 0 {
		t.Fatalf("caches not cleared: %+v", report)
	}
}
