package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"research-match/internal/domain/matching"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer renders a fixed-structure prompt from the pair, invokes the text
// generation backend and parses the reply into a MatchScore. Every failure
// mode, transport, timeout or malformed output, maps to
// matching.ErrModelUnavailable; retry policy belongs to the caller.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
}

func NewScorer(generator contentGenerator, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{generator: generator, logger: logger}
}

func (s *Scorer) Score(ctx context.Context, student matching.StudentProfile, project matching.Project) (matching.MatchScore, error) {
	prompt, err := buildPrompt(student, project)
	if err != nil {
		return matching.MatchScore{}, fmt.Errorf("%w: %v", matching.ErrModelUnavailable, err)
	}

	s.logger.Debug("model score request",
		zap.String("student_id", student.ID.String()),
		zap.String("project_id", project.ID.String()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return matching.MatchScore{}, fmt.Errorf("%w: %v", matching.ErrModelUnavailable, err)
	}

	score, err := parseResponse(raw)
	if err != nil {
		s.logger.Debug("model response rejected", zap.Error(err))
		return matching.MatchScore{}, fmt.Errorf("%w: %v", matching.ErrModelUnavailable, err)
	}

	score.Source = matching.SourceModel
	return score, nil
}

func buildPrompt(student matching.StudentProfile, project matching.Project) (string, error) {
	studentPayload := map[string]any{
		"major":               student.Major,
		"grade":               student.Grade,
		"gpa":                 student.GPA,
		"skills":              student.Skills,
		"research_interests":  student.Interests,
		"academic_background": student.AcademicBackground,
		"self_introduction":   student.SelfIntroduction,
		"project_experience":  experienceSummary(student.Experiences),
	}
	projectPayload := map[string]any{
		"title":           project.Title,
		"description":     project.Description,
		"requirements":    project.Requirements,
		"required_skills": project.RequiredSkills,
		"research_field":  project.ResearchField,
		"duration_months": project.DurationMonths,
	}

	studentJSON, err := json.MarshalIndent(studentPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal student payload: %w", err)
	}
	projectJSON, err := json.MarshalIndent(projectPayload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal project payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{STUDENT_JSON}}", string(studentJSON))
	prompt = strings.ReplaceAll(prompt, "{{PROJECT_JSON}}", string(projectJSON))
	return prompt, nil
}

func experienceSummary(exps []matching.ProjectExperience) []map[string]string {
	out := make([]map[string]string, 0, len(exps))
	for _, e := range exps {
		out = append(out, map[string]string{
			"title":        e.Title,
			"role":         e.Role,
			"duration":     e.Duration,
			"achievements": e.Achievements,
		})
	}
	return out
}

func parseResponse(raw string) (matching.MatchScore, error) {
	cleaned := extractJSON(raw)
	if !gjson.Valid(cleaned) {
		return matching.MatchScore{}, fmt.Errorf("response is not valid JSON")
	}

	doc := gjson.Parse(cleaned)
	for _, field := range []string{"overall", "skill_match", "interest_match", "experience_match"} {
		if !doc.Get(field).Exists() {
			return matching.MatchScore{}, fmt.Errorf("response missing field %q", field)
		}
	}

	matched := make([]string, 0)
	for _, v := range doc.Get("matched_skills").Array() {
		s := strings.TrimSpace(v.String())
		if s != "" {
			matched = append(matched, s)
		}
	}

	return matching.MatchScore{
		Overall:         clamp(int(doc.Get("overall").Int())),
		SkillMatch:      clamp(int(doc.Get("skill_match").Int())),
		InterestMatch:   clamp(int(doc.Get("interest_match").Int())),
		ExperienceMatch: clamp(int(doc.Get("experience_match").Int())),
		Reasoning:       strings.TrimSpace(doc.Get("reasoning").String()),
		MatchedSkills:   matched,
		Suggestions:     strings.TrimSpace(doc.Get("suggestions").String()),
	}, nil
}

// extractJSON strips markdown code fences the model sometimes adds despite
// instructions.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
