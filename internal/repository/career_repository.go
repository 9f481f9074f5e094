package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// CareerRepository reads degree programs.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs a CareerRepository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// FindByID fetches an active career.
func (r *CareerRepository) FindByID(ctx context.Context, id string) (*models.Career, error) {
	const query = `SELECT id, name, code, active FROM careers WHERE id = $1 AND active = TRUE`
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find career: %w", err)
	}
	return &career, nil
}

// List returns every active career ordered by name.
func (r *CareerRepository) List(ctx context.Context) ([]models.Career, error) {
	const query = `SELECT id, name, code, active FROM careers WHERE active = TRUE ORDER BY name`
	var careers []models.Career
	if err := r.db.SelectContext(ctx, &careers, query); err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return careers, nil
}
