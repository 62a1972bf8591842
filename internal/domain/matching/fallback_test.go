package matching

import (
	"math"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func student(skills, interests []string, exps int) StudentProfile {
	sp := StudentProfile{
		ID:        uuid.New(),
		Major:     "Computer Science",
		Grade:     3,
		GPA:       3.6,
		Skills:    skills,
		Interests: interests,
	}
	for i := 0; i < exps; i++ {
		sp.Experiences = append(sp.Experiences, ProjectExperience{Title: "Project", Role: "Member"})
	}
	return sp
}

func project(required []string, field string) Project {
	return Project{
		ID:             uuid.New(),
		Title:          "Research Project",
		RequiredSkills: required,
		ResearchField:  field,
		Status:         StatusActive,
	}
}

func TestFallback_DisjointSkills(t *testing.T) {
	f := NewFallback()
	got := f.Score(student([]string{"go", "rust"}, nil, 0), project([]string{"python", "matlab"}, "robotics"))

	if got.SkillMatch != 0 {
		t.Fatalf("expected skillMatch=0, got %d", got.SkillMatch)
	}
	if len(got.MatchedSkills) != 0 {
		t.Fatalf("expected no matched skills, got %v", got.MatchedSkills)
	}
	if got.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %q", got.Source)
	}
}

func TestFallback_FullSkillCoverage(t *testing.T) {
	f := NewFallback()
	got := f.Score(
		student([]string{"Python", "SQL", "Docker", "Go"}, nil, 0),
		project([]string{"python", "sql", "docker"}, ""),
	)

	if got.SkillMatch != 100 {
		t.Fatalf("expected skillMatch=100, got %d", got.SkillMatch)
	}
	if len(got.MatchedSkills) != 3 {
		t.Fatalf("expected 3 matched skills, got %v", got.MatchedSkills)
	}
}

func TestFallback_PartialSkillCoverage(t *testing.T) {
	f := NewFallback()
	got := f.Score(
		student([]string{"python", "sql"}, nil, 0),
		project([]string{"python", "sql", "docker"}, ""),
	)

	if got.SkillMatch != 67 {
		t.Fatalf("expected skillMatch=67, got %d", got.SkillMatch)
	}
	want := []string{"python", "sql"}
	if !reflect.DeepEqual(got.MatchedSkills, want) {
		t.Fatalf("expected matched skills %v, got %v", want, got.MatchedSkills)
	}
}

func TestFallback_EmptyRequiredSkills(t *testing.T) {
	f := NewFallback()
	got := f.Score(student(nil, nil, 0), project(nil, ""))

	if got.SkillMatch != 0 {
		t.Fatalf("expected skillMatch=0 for empty requirements, got %d", got.SkillMatch)
	}
	if got.Overall < 0 || got.Overall > 100 {
		t.Fatalf("overall out of range: %d", got.Overall)
	}
}

func TestFallback_InterestSubstringMatch(t *testing.T) {
	f := NewFallback()

	hit := f.Score(student(nil, []string{"Machine Learning"}, 0), project(nil, "applied machine learning systems"))
	if hit.InterestMatch != interestHit {
		t.Fatalf("expected interestMatch=%d, got %d", interestHit, hit.InterestMatch)
	}

	miss := f.Score(student(nil, []string{"databases"}, 0), project(nil, "quantum optics"))
	if miss.InterestMatch != interestMiss {
		t.Fatalf("expected interestMatch=%d, got %d", interestMiss, miss.InterestMatch)
	}
}

func TestFallback_ExperienceComponent(t *testing.T) {
	f := NewFallback()

	with := f.Score(student(nil, nil, 2), project(nil, ""))
	if with.ExperienceMatch != hasExperience {
		t.Fatalf("expected experienceMatch=%d, got %d", hasExperience, with.ExperienceMatch)
	}

	without := f.Score(student(nil, nil, 0), project(nil, ""))
	if without.ExperienceMatch != noExperience {
		t.Fatalf("expected experienceMatch=%d, got %d", noExperience, without.ExperienceMatch)
	}
}

func TestFallback_OverallFormula(t *testing.T) {
	f := NewFallback()

	cases := []struct {
		name     string
		skills   []string
		required []string
		interest []string
		field    string
		exps     int
	}{
		{"all components hit", []string{"python", "sql"}, []string{"python", "sql"}, []string{"nlp"}, "nlp research", 1},
		{"skills only", []string{"python"}, []string{"python", "docker"}, nil, "", 0},
		{"nothing matches", nil, []string{"java"}, nil, "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := f.Score(student(tc.skills, tc.interest, tc.exps), project(tc.required, tc.field))

			want := int(math.Round(
				float64(got.SkillMatch)*0.5 + float64(got.InterestMatch)*0.3 + float64(got.ExperienceMatch)*0.2,
			))
			if got.Overall != want {
				t.Fatalf("overall=%d, want %d (skill=%d interest=%d experience=%d)",
					got.Overall, want, got.SkillMatch, got.InterestMatch, got.ExperienceMatch)
			}
			if got.Overall < 0 || got.Overall > 100 {
				t.Fatalf("overall out of range: %d", got.Overall)
			}
		})
	}
}

func TestFallback_DuplicateRequiredSkillsCountOnce(t *testing.T) {
	f := NewFallback()
	got := f.Score(
		student([]string{"python"}, nil, 0),
		project([]string{"python", "Python", "docker"}, ""),
	)

	// python/Python collapse to one requirement out of two.
	if got.SkillMatch != 50 {
		t.Fatalf("expected skillMatch=50, got %d", got.SkillMatch)
	}
}
