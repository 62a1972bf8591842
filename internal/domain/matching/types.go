package matching

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrStudentNotFound = errors.New("student profile not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidLimit    = errors.New("limit must be at least 1")

	// ErrModelUnavailable covers timeouts, transport failures and
	// unparseable output from the remote scoring model. Callers inside the
	// engine absorb it into the fallback path; it never reaches end users.
	ErrModelUnavailable = errors.New("scoring model unavailable")
)

type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusActive    ProjectStatus = "active"
	StatusClosed    ProjectStatus = "closed"
	StatusCompleted ProjectStatus = "completed"
)

type ProjectExperience struct {
	Title        string
	Role         string
	Duration     string
	Achievements string
}

type StudentProfile struct {
	ID                 uuid.UUID
	Major              string
	Grade              int
	GPA                float64
	Skills             []string
	Interests          []string
	AcademicBackground string
	SelfIntroduction   string
	Experiences        []ProjectExperience
}

type Project struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Requirements   string
	RequiredSkills []string
	ResearchField  string
	DurationMonths int
	Positions      int
	Status         ProjectStatus
}

// ScoreSource tags which path produced a score. Tests and downstream
// consumers branch on this instead of sniffing the reasoning text.
type ScoreSource string

const (
	SourceModel    ScoreSource = "model"
	SourceFallback ScoreSource = "fallback"
)

type MatchScore struct {
	Overall         int         `json:"overall"`
	SkillMatch      int         `json:"skill_match"`
	InterestMatch   int         `json:"interest_match"`
	ExperienceMatch int         `json:"experience_match"`
	Reasoning       string      `json:"reasoning"`
	MatchedSkills   []string    `json:"matched_skills"`
	Suggestions     string      `json:"suggestions"`
	Source          ScoreSource `json:"source"`
}

type RankedProject struct {
	Project Project    `json:"project"`
	Score   MatchScore `json:"score"`
}

type RankedStudent struct {
	StudentID uuid.UUID  `json:"student_id"`
	Score     MatchScore `json:"score"`
}

// ModelScorer is the remote, possibly slow, possibly failing path.
type ModelScorer interface {
	Score(ctx context.Context, student StudentProfile, project Project) (MatchScore, error)
}

// RuleScorer is the deterministic local path. It is pure and total.
type RuleScorer interface {
	Score(student StudentProfile, project Project) MatchScore
}

// StudentSource and ProjectSource are the read-model boundary. They must
// surface not-found distinctly from empty via the sentinel errors above.
type StudentSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (StudentProfile, error)
	ListAll(ctx context.Context) ([]StudentProfile, error)
}

type ProjectSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (Project, error)
	ListActive(ctx context.Context) ([]Project, error)
}
