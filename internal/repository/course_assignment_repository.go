package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CourseAssignmentRepository reads the course <-> professor <-> group relation.
type CourseAssignmentRepository struct {
	db *sqlx.DB
}

// NewCourseAssignmentRepository constructs the repository.
func NewCourseAssignmentRepository(db *sqlx.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{db: db}
}

// IsAssigned reports whether the professor actively teaches the group.
func (r *CourseAssignmentRepository) IsAssigned(ctx context.Context, professorID, groupID string) (bool, error) {
	const query = `SELECT 1 FROM course_assignments WHERE professor_id = $1 AND group_id = $2 AND active = TRUE LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, professorID, groupID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course assignment: %w", err)
	}
	return true, nil
}
