package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

const groupDetailSelect = `SELECT g.id, g.course_id, g.name, g.period, g.active,
c.name AS course_name, c.code AS course_code, c.career_id
FROM class_groups g
JOIN courses c ON c.id = g.course_id`

// GroupRepository reads class groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs a GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindDetailByID fetches an active group with its course labels and career.
func (r *GroupRepository) FindDetailByID(ctx context.Context, id string) (*models.GroupDetail, error) {
	query := groupDetailSelect + ` WHERE g.id = $1 AND g.active = TRUE`
	var group models.GroupDetail
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return &group, nil
}

// CourseIDsByGroupIDs maps group ids to course ids in one round trip.
func (r *GroupRepository) CourseIDsByGroupIDs(ctx context.Context, groupIDs []string) ([]models.GroupCourse, error) {
	if len(groupIDs) == 0 {
		return []models.GroupCourse{}, nil
	}
	const query = `SELECT id AS group_id, course_id FROM class_groups WHERE id = ANY($1)`
	var rows []models.GroupCourse
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(groupIDs)); err != nil {
		return nil, fmt.Errorf("map groups to courses: %w", err)
	}
	return rows, nil
}
