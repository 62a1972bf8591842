package dto

import "github.com/google/uuid"

type MatchScoreResponse struct {
	Overall         int      `json:"overall"`
	SkillMatch      int      `json:"skill_match"`
	InterestMatch   int      `json:"interest_match"`
	ExperienceMatch int      `json:"experience_match"`
	Reasoning       string   `json:"reasoning"`
	MatchedSkills   []string `json:"matched_skills"`
	Suggestions     string   `json:"suggestions"`
	Source          string   `json:"source"`
}

type RankedProjectResponse struct {
	ProjectID     uuid.UUID          `json:"project_id"`
	Title         string             `json:"title"`
	ResearchField string             `json:"research_field"`
	Score         MatchScoreResponse `json:"score"`
}

type RankedStudentResponse struct {
	StudentID uuid.UUID          `json:"student_id"`
	Score     MatchScoreResponse `json:"score"`
}

type CacheSideStatsResponse struct {
	TotalEntries   int `json:"total_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

type CacheStatsResponse struct {
	Scores  CacheSideStatsResponse `json:"scores"`
	Batches CacheSideStatsResponse `json:"batches"`
}
