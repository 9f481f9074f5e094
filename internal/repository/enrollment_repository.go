package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// EnrollmentRepository reads student enrolments and what they make evaluable.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// IsEnrolled reports whether the student holds an active enrolment in an active group.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, groupID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments e JOIN class_groups g ON g.id = e.group_id WHERE e.student_id = $1 AND e.group_id = $2 AND e.active = TRUE AND g.active = TRUE LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, groupID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListGroupsForStudent returns the active groups the student is enrolled in.
func (r *EnrollmentRepository) ListGroupsForStudent(ctx context.Context, studentID string) ([]models.GroupDetail, error) {
	query := groupDetailSelect + `
JOIN enrollments e ON e.group_id = g.id
WHERE e.student_id = $1 AND e.active = TRUE AND g.active = TRUE
ORDER BY g.period DESC, c.name`
	var groups []models.GroupDetail
	if err := r.db.SelectContext(ctx, &groups, query, studentID); err != nil {
		return nil, fmt.Errorf("list student groups: %w", err)
	}
	return groups, nil
}

// ListProfessorsForStudent returns every professor assigned to the student's
// active groups, flagging the ones already evaluated in the group's period.
func (r *EnrollmentRepository) ListProfessorsForStudent(ctx context.Context, studentID string) ([]models.EnrolledProfessor, error) {
	const query = `SELECT ca.group_id, p.id AS professor_id, u.full_name,
EXISTS (SELECT 1 FROM evaluations ev WHERE ev.student_id = e.student_id AND ev.professor_id = p.id AND ev.group_id = ca.group_id AND ev.period = g.period) AS evaluated
FROM enrollments e
JOIN class_groups g ON g.id = e.group_id
JOIN course_assignments ca ON ca.group_id = e.group_id AND ca.active = TRUE
JOIN professors p ON p.id = ca.professor_id AND p.active = TRUE
JOIN users u ON u.id = p.user_id
WHERE e.student_id = $1 AND e.active = TRUE AND g.active = TRUE
ORDER BY ca.group_id, u.full_name`
	var professors []models.EnrolledProfessor
	if err := r.db.SelectContext(ctx, &professors, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrolled professors: %w", err)
	}
	return professors, nil
}
