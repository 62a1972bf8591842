package repository

import (
	"context"
	"errors"

	"research-match/internal/database"
	"research-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresStudentRepository supplies student profiles, including their
// ordered project experience records, to the matching engine.
type PostgresStudentRepository struct {
	db database.DB
}

func NewPostgresStudentRepository(db database.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

func (r *PostgresStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (matching.StudentProfile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, major, COALESCE(grade, 0), COALESCE(gpa, 0),
		        COALESCE(skills, '{}'), COALESCE(research_interests, '{}'),
		        COALESCE(academic_background, ''), COALESCE(self_introduction, '')
		 FROM student_profiles
		 WHERE id = $1`,
		id,
	)

	var sp matching.StudentProfile
	if err := row.Scan(&sp.ID, &sp.Major, &sp.Grade, &sp.GPA, &sp.Skills, &sp.Interests, &sp.AcademicBackground, &sp.SelfIntroduction); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.StudentProfile{}, matching.ErrStudentNotFound
		}
		return matching.StudentProfile{}, err
	}

	exps, err := r.experiencesByStudentIDs(ctx, []uuid.UUID{sp.ID})
	if err != nil {
		return matching.StudentProfile{}, err
	}
	sp.Experiences = exps[sp.ID]

	return sp, nil
}

func (r *PostgresStudentRepository) ListAll(ctx context.Context) ([]matching.StudentProfile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, major, COALESCE(grade, 0), COALESCE(gpa, 0),
		        COALESCE(skills, '{}'), COALESCE(research_interests, '{}'),
		        COALESCE(academic_background, ''), COALESCE(self_introduction, '')
		 FROM student_profiles
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.StudentProfile, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var sp matching.StudentProfile
		if err := rows.Scan(&sp.ID, &sp.Major, &sp.Grade, &sp.GPA, &sp.Skills, &sp.Interests, &sp.AcademicBackground, &sp.SelfIntroduction); err != nil {
			return nil, err
		}
		out = append(out, sp)
		ids = append(ids, sp.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	exps, err := r.experiencesByStudentIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Experiences = exps[out[i].ID]
	}

	return out, nil
}

func (r *PostgresStudentRepository) experiencesByStudentIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]matching.ProjectExperience, error) {
	rows, err := r.db.Query(ctx,
		`SELECT student_id, COALESCE(title, ''), COALESCE(role, ''), COALESCE(duration, ''), COALESCE(achievements, '')
		 FROM project_experiences
		 WHERE student_id = ANY($1)
		 ORDER BY student_id, position ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]matching.ProjectExperience, len(ids))
	for rows.Next() {
		var studentID uuid.UUID
		var exp matching.ProjectExperience
		if err := rows.Scan(&studentID, &exp.Title, &exp.Role, &exp.Duration, &exp.Achievements); err != nil {
			return nil, err
		}
		out[studentID] = append(out[studentID], exp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
