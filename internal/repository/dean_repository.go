package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DeanRepository manages faculty dean profiles.
type DeanRepository struct {
	db *sqlx.DB
}

// NewDeanRepository constructs a DeanRepository.
func NewDeanRepository(db *sqlx.DB) *DeanRepository {
	return &DeanRepository{db: db}
}

// EnsureForUser creates or reactivates the dean profile of a user.
func (r *DeanRepository) EnsureForUser(ctx context.Context, userID string, faculty *string) error {
	const query = `INSERT INTO deans (id, user_id, faculty, active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $4)
ON CONFLICT (user_id) DO UPDATE SET active = TRUE, faculty = COALESCE(EXCLUDED.faculty, deans.faculty), updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, faculty, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure dean: %w", err)
	}
	return nil
}

// DeactivateByUser soft-deletes the dean profile of a user.
func (r *DeanRepository) DeactivateByUser(ctx context.Context, userID string) error {
	const query = `UPDATE deans SET active = FALSE, updated_at = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate dean: %w", err)
	}
	return nil
}
