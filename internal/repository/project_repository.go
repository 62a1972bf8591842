package repository

import (
	"context"
	"errors"

	"research-match/internal/database"
	"research-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, title, COALESCE(description, ''), COALESCE(requirements, ''),
	COALESCE(required_skills, '{}'), COALESCE(research_field, ''),
	COALESCE(duration_months, 0), COALESCE(positions, 0), status`

type PostgresProjectRepository struct {
	db database.DB
}

func NewPostgresProjectRepository(db database.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{db: db}
}

func (r *PostgresProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (matching.Project, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 WHERE id = $1`,
		id,
	)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matching.Project{}, matching.ErrProjectNotFound
		}
		return matching.Project{}, err
	}
	return p, nil
}

// ListActive returns only projects open for matching, in creation order.
// That order is the tie-break for equal scores, so it must be stable.
func (r *PostgresProjectRepository) ListActive(ctx context.Context) ([]matching.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+`
		 FROM projects
		 WHERE status = $1
		 ORDER BY created_at ASC`,
		string(matching.StatusActive),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanProject(row database.Row) (matching.Project, error) {
	var p matching.Project
	var status string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Requirements, &p.RequiredSkills, &p.ResearchField, &p.DurationMonths, &p.Positions, &status)
	if err != nil {
		return matching.Project{}, err
	}
	p.Status = matching.ProjectStatus(status)
	return p, nil
}
