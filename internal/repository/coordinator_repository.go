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

// CoordinatorRepository manages career coordinator profiles.
type CoordinatorRepository struct {
	db *sqlx.DB
}

// NewCoordinatorRepository constructs a CoordinatorRepository.
func NewCoordinatorRepository(db *sqlx.DB) *CoordinatorRepository {
	return &CoordinatorRepository{db: db}
}

// FindByUserID fetches the active coordinator profile of a user.
func (r *CoordinatorRepository) FindByUserID(ctx context.Context, userID string) (*models.Coordinator, error) {
	const query = `SELECT id, user_id, career_id, active, created_at, updated_at FROM coordinators WHERE user_id = $1 AND active = TRUE`
	var coordinator models.Coordinator
	if err := r.db.GetContext(ctx, &coordinator, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find coordinator by user: %w", err)
	}
	return &coordinator, nil
}

// EnsureForUser creates or reactivates the coordinator profile and points it at careerID.
func (r *CoordinatorRepository) EnsureForUser(ctx context.Context, userID, careerID string) error {
	const query = `INSERT INTO coordinators (id, user_id, career_id, active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $4)
ON CONFLICT (user_id) DO UPDATE SET active = TRUE, career_id = EXCLUDED.career_id, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, careerID, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure coordinator: %w", err)
	}
	return nil
}

// DeactivateByUser soft-deletes the coordinator profile of a user.
func (r *CoordinatorRepository) DeactivateByUser(ctx context.Context, userID string) error {
	const query = `UPDATE coordinators SET active = FALSE, updated_at = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate coordinator: %w", err)
	}
	return nil
}
