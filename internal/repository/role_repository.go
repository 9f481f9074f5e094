package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// RoleRepository persists user role assignments. (user_id, role) is unique.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository constructs a RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Upsert activates role for the user, inserting the row when it does not exist yet.
// Re-activating an already active pair leaves the row untouched.
func (r *RoleRepository) Upsert(ctx context.Context, userID string, role models.Role) error {
	const query = `INSERT INTO user_roles (id, user_id, role, active, assigned_at, updated_at)
VALUES ($1, $2, $3, TRUE, $4, $4)
ON CONFLICT (user_id, role) DO UPDATE SET active = TRUE, updated_at = EXCLUDED.updated_at
WHERE user_roles.active = FALSE`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, string(role), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert user role: %w", err)
	}
	return nil
}

// Deactivate marks every spelling of role inactive for the user. Rows are kept.
// It reports whether an active row was changed.
func (r *RoleRepository) Deactivate(ctx context.Context, userID string, role models.Role) (bool, error) {
	const query = `UPDATE user_roles SET active = FALSE, updated_at = $3 WHERE user_id = $1 AND role = ANY($2) AND active = TRUE`
	res, err := r.db.ExecContext(ctx, query, userID, pq.Array(role.Spellings()), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("deactivate user role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate user role rows: %w", err)
	}
	return affected > 0, nil
}

// ListActive returns the raw names of the user's active roles.
func (r *RoleRepository) ListActive(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1 AND active = TRUE ORDER BY role`
	var roles []string
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("list active roles: %w", err)
	}
	return roles, nil
}

// ListAssignments returns every assignment row of the user, active or not.
func (r *RoleRepository) ListAssignments(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	const query = `SELECT id, user_id, role, active, assigned_at, updated_at FROM user_roles WHERE user_id = $1 ORDER BY role`
	var rows []models.RoleAssignment
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	return rows, nil
}
