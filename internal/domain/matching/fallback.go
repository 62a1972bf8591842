package matching

import (
	"math"
	"strings"
)

const (
	fallbackReasoning   = "Rule-based compatibility score computed locally; the scoring model was not consulted."
	fallbackSuggestions = "Request a fresh score once the scoring model is reachable for a more detailed assessment."

	interestHit   = 70
	interestMiss  = 30
	hasExperience = 60
	noExperience  = 30
)

// Fallback computes a deterministic compatibility score from structured
// profile attributes. It never fails and never blocks. GPA and grade are
// intentionally not part of the formula.
type Fallback struct{}

func NewFallback() Fallback {
	return Fallback{}
}

func (Fallback) Score(student StudentProfile, project Project) MatchScore {
	skill, matched := skillMatch(student.Skills, project.RequiredSkills)
	interest := interestMatch(student.Interests, project.ResearchField)
	experience := noExperience
	if len(student.Experiences) > 0 {
		experience = hasExperience
	}

	overall := int(math.Round(float64(skill)*0.5 + float64(interest)*0.3 + float64(experience)*0.2))
	overall = clampScore(overall)

	return MatchScore{
		Overall:         overall,
		SkillMatch:      skill,
		InterestMatch:   interest,
		ExperienceMatch: experience,
		Reasoning:       fallbackReasoning,
		MatchedSkills:   matched,
		Suggestions:     fallbackSuggestions,
		Source:          SourceFallback,
	}
}

// skillMatch returns the share of required skills the student covers,
// compared case-insensitively, plus the covered subset in the project's
// original spelling. An empty requirement list scores zero.
func skillMatch(studentSkills, requiredSkills []string) (int, []string) {
	matched := make([]string, 0, len(requiredSkills))
	if len(requiredSkills) == 0 {
		return 0, matched
	}

	owned := make(map[string]struct{}, len(studentSkills))
	for _, s := range studentSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		owned[s] = struct{}{}
	}

	seen := make(map[string]struct{}, len(requiredSkills))
	total := 0
	hits := 0
	for _, r := range requiredSkills {
		key := strings.ToLower(strings.TrimSpace(r))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total++
		if _, ok := owned[key]; ok {
			hits++
			matched = append(matched, strings.TrimSpace(r))
		}
	}
	if total == 0 {
		return 0, matched
	}

	return int(math.Round(float64(hits) / float64(total) * 100)), matched
}

func interestMatch(interests []string, researchField string) int {
	field := strings.ToLower(strings.TrimSpace(researchField))
	if field == "" {
		return interestMiss
	}
	for _, it := range interests {
		it = strings.ToLower(strings.TrimSpace(it))
		if it == "" {
			continue
		}
		if strings.Contains(field, it) {
			return interestHit
		}
	}
	return interestMiss
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
