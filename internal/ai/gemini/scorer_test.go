package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"research-match/internal/domain/matching"

	"github.com/google/uuid"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testStudent() matching.StudentProfile {
	return matching.StudentProfile{
		ID:        uuid.New(),
		Major:     "Computer Science",
		Grade:     3,
		GPA:       3.7,
		Skills:    []string{"Python", "PyTorch"},
		Interests: []string{"machine learning"},
	}
}

func testProject() matching.Project {
	return matching.Project{
		ID:             uuid.New(),
		Title:          "Neural Ranking Models",
		RequiredSkills: []string{"Python", "PyTorch"},
		ResearchField:  "machine learning",
		DurationMonths: 6,
		Status:         matching.StatusActive,
	}
}

const validResponse = `{
  "overall": 82,
  "skill_match": 90,
  "interest_match": 85,
  "experience_match": 60,
  "reasoning": "Strong overlap in ML tooling.",
  "matched_skills": ["Python", "PyTorch"],
  "suggestions": "Review the lab's recent publications."
}`

func TestScorer_ValidResponse(t *testing.T) {
	gen := &fakeGenerator{response: validResponse}
	s := NewScorer(gen, nil)

	got, err := s.Score(context.Background(), testStudent(), testProject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Overall != 82 || got.SkillMatch != 90 || got.InterestMatch != 85 || got.ExperienceMatch != 60 {
		t.Fatalf("component scores wrong: %+v", got)
	}
	if got.Source != matching.SourceModel {
		t.Fatalf("expected model source, got %q", got.Source)
	}
	if len(got.MatchedSkills) != 2 {
		t.Fatalf("expected 2 matched skills, got %v", got.MatchedSkills)
	}
	if got.Reasoning == "" || got.Suggestions == "" {
		t.Fatalf("narrative fields dropped: %+v", got)
	}
}

func TestScorer_MarkdownFencedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n" + validResponse + "\n```"}
	s := NewScorer(gen, nil)

	got, err := s.Score(context.Background(), testStudent(), testProject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Overall != 82 {
		t.Fatalf("expected overall=82, got %d", got.Overall)
	}
}

func TestScorer_PromptContainsBothProfiles(t *testing.T) {
	gen := &fakeGenerator{response: validResponse}
	s := NewScorer(gen, nil)

	student := testStudent()
	project := testProject()
	if _, err := s.Score(context.Background(), student, project); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if !strings.Contains(gen.prompt, student.Major) {
		t.Fatal("prompt missing student major")
	}
	if !strings.Contains(gen.prompt, project.Title) {
		t.Fatal("prompt missing project title")
	}
	if strings.Contains(gen.prompt, "{{STUDENT_JSON}}") || strings.Contains(gen.prompt, "{{PROJECT_JSON}}") {
		t.Fatal("template placeholders survived rendering")
	}
}

func TestScorer_GeneratorErrorMapsToModelUnavailable(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rpc deadline exceeded")}
	s := NewScorer(gen, nil)

	_, err := s.Score(context.Background(), testStudent(), testProject())
	if !errors.Is(err, matching.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestScorer_MalformedResponses(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "I think this student is a great fit!"},
		{"missing overall", `{"skill_match": 50, "interest_match": 50, "experience_match": 50}`},
		{"missing skill_match", `{"overall": 50, "interest_match": 50, "experience_match": 50}`},
		{"empty", ""},
		{"truncated", `{"overall": 80, "skill_match":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewScorer(&fakeGenerator{response: tc.response}, nil)
			_, err := s.Score(context.Background(), testStudent(), testProject())
			if !errors.Is(err, matching.ErrModelUnavailable) {
				t.Fatalf("expected ErrModelUnavailable, got %v", err)
			}
		})
	}
}

func TestScorer_OutOfRangeScoresClamped(t *testing.T) {
	resp := `{
  "overall": 140,
  "skill_match": -5,
  "interest_match": 100,
  "experience_match": 0,
  "reasoning": "r",
  "matched_skills": [],
  "suggestions": "s"
}`
	s := NewScorer(&fakeGenerator{response: resp}, nil)

	got, err := s.Score(context.Background(), testStudent(), testProject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Overall != 100 {
		t.Fatalf("expected overall clamped to 100, got %d", got.Overall)
	}
	if got.SkillMatch != 0 {
		t.Fatalf("expected skill_match clamped to 0, got %d", got.SkillMatch)
	}
}

func TestScorer_BlankMatchedSkillsDropped(t *testing.T) {
	resp := `{
  "overall": 50,
  "skill_match": 50,
  "interest_match": 50,
  "experience_match": 50,
  "matched_skills": ["Go", "  ", ""]
}`
	s := NewScorer(&fakeGenerator{response: resp}, nil)

	got, err := s.Score(context.Background(), testStudent(), testProject())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got.MatchedSkills) != 1 || got.MatchedSkills[0] != "Go" {
		t.Fatalf("expected [Go], got %v", got.MatchedSkills)
	}
}
