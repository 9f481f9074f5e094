package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eval-api/internal/models"
)

const professorDetailSelect = `SELECT p.id, p.user_id, p.career_id, p.active, p.created_at, p.updated_at,
u.full_name, u.email, c.name AS career_name
FROM professors p
JOIN users u ON u.id = p.user_id
LEFT JOIN careers c ON c.id = p.career_id`

// ProfessorRepository manages persistence for professor profiles.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// FindDetailByID fetches an active professor with display fields.
func (r *ProfessorRepository) FindDetailByID(ctx context.Context, id string) (*models.ProfessorDetail, error) {
	query := professorDetailSelect + ` WHERE p.id = $1 AND p.active = TRUE`
	var professor models.ProfessorDetail
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find professor: %w", err)
	}
	return &professor, nil
}

// FindByUserID fetches the active professor profile linked to a user.
func (r *ProfessorRepository) FindByUserID(ctx context.Context, userID string) (*models.Professor, error) {
	const query = `SELECT id, user_id, career_id, active, created_at, updated_at FROM professors WHERE user_id = $1 AND active = TRUE`
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find professor by user: %w", err)
	}
	return &professor, nil
}

// ListByCareer returns the active professors affiliated with a career.
func (r *ProfessorRepository) ListByCareer(ctx context.Context, careerID string) ([]models.ProfessorDetail, error) {
	query := professorDetailSelect + ` WHERE p.career_id = $1 AND p.active = TRUE ORDER BY u.full_name`
	var professors []models.ProfessorDetail
	if err := r.db.SelectContext(ctx, &professors, query, careerID); err != nil {
		return nil, fmt.Errorf("list professors by career: %w", err)
	}
	return professors, nil
}

// EnsureForUser creates or reactivates the professor profile of a user.
// A nil careerID keeps the current affiliation.
func (r *ProfessorRepository) EnsureForUser(ctx context.Context, userID string, careerID *string) error {
	const query = `INSERT INTO professors (id, user_id, career_id, active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $4)
ON CONFLICT (user_id) DO UPDATE SET active = TRUE, career_id = COALESCE(EXCLUDED.career_id, professors.career_id), updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, careerID, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure professor: %w", err)
	}
	return nil
}

// DeactivateByUser soft-deletes the professor profile of a user.
func (r *ProfessorRepository) DeactivateByUser(ctx context.Context, userID string) error {
	const query = `UPDATE professors SET active = FALSE, updated_at = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate professor: %w", err)
	}
	return nil
}

// CountByCareer returns the number of active professors per career in one query.
func (r *ProfessorRepository) CountByCareer(ctx context.Context) (map[string]int, error) {
	const query = `SELECT career_id, COUNT(*) AS total FROM professors WHERE active = TRUE AND career_id IS NOT NULL GROUP BY career_id`
	var rows []struct {
		CareerID string `db:"career_id"`
		Total    int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count professors by career: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CareerID] = row.Total
	}
	return counts, nil
}
