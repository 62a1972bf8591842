package handler

import (
	"errors"
	"strconv"

	"research-match/internal/delivery/http/dto"
	"research-match/internal/delivery/http/middleware"
	"research-match/internal/domain/matching"
	"research-match/internal/pkg/response"
	"research-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const defaultRankLimit = 10

type MatchHandler struct {
	uc usecase.MatchUsecase
}

func NewMatchHandler(uc usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{uc: uc}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/students/:student_id/matches", h.RankProjectsForStudent)
	r.Get("/students/:student_id/projects/:project_id/score", h.ScorePair)
	r.Get("/projects/:project_id/candidates", h.RankStudentsForProject)
}

func (h *MatchHandler) ScorePair(c fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid student id", nil, err)
	}
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid project id", nil, err)
	}

	score, err := h.uc.ScorePair(c.Context(), studentID, projectID)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, scoreToResponse(score))
}

func (h *MatchHandler) RankProjectsForStudent(c fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid student id", nil, err)
	}
	limit, err := limitFromQuery(c)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}

	ranked, err := h.uc.RankProjectsForStudent(c.Context(), studentID, limit)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	out := make([]dto.RankedProjectResponse, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, dto.RankedProjectResponse{
			ProjectID:     r.Project.ID,
			Title:         r.Project.Title,
			ResearchField: r.Project.ResearchField,
			Score:         scoreToResponse(r.Score),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) RankStudentsForProject(c fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("project_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid project id", nil, err)
	}
	limit, err := limitFromQuery(c)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}

	ranked, err := h.uc.RankStudentsForProject(c.Context(), projectID, limit)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	out := make([]dto.RankedStudentResponse, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, dto.RankedStudentResponse{
			StudentID: r.StudentID,
			Score:     scoreToResponse(r.Score),
		})
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func limitFromQuery(c fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultRankLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return limit, nil
}

func scoreToResponse(s matching.MatchScore) dto.MatchScoreResponse {
	matched := s.MatchedSkills
	if matched == nil {
		matched = []string{}
	}
	return dto.MatchScoreResponse{
		Overall:         s.Overall,
		SkillMatch:      s.SkillMatch,
		InterestMatch:   s.InterestMatch,
		ExperienceMatch: s.ExperienceMatch,
		Reasoning:       s.Reasoning,
		MatchedSkills:   matched,
		Suggestions:     s.Suggestions,
		Source:          string(s.Source),
	}
}

func mapMatchUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrStudentNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Student profile not found", nil, err)
	case errors.Is(err, usecase.ErrProjectNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Project not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}
