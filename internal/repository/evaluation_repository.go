package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// EvaluationRepository persists evaluations and reads the rows aggregated into statistics.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// ListForStats returns the evaluations matching filter, newest first.
func (r *EvaluationRepository) ListForStats(ctx context.Context, filter models.EvaluationStatsFilter) ([]models.EvaluationStatRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT e.id, e.student_id, e.professor_id, e.group_id, e.overall_rating, e.comments, e.created_at FROM evaluations e`)
	if filter.CourseID != "" || filter.CareerID != "" {
		b.WriteString(` JOIN class_groups g ON g.id = e.group_id JOIN courses c ON c.id = g.course_id`)
	}

	var conditions []string
	var args []interface{}
	if len(filter.ProfessorIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("e.professor_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.ProfessorIDs))
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("g.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.CareerID != "" {
		conditions = append(conditions, fmt.Sprintf("c.career_id = $%d", len(args)+1))
		args = append(args, filter.CareerID)
	}
	conditions, args = appendRange(conditions, args, filter.From, filter.To)

	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY e.created_at DESC")

	var rows []models.EvaluationStatRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("list evaluations for stats: %w", err)
	}
	return rows, nil
}

// SummariesByProfessor returns count and mean rating per professor in one query.
// Professors without evaluations in range are absent from the result.
func (r *EvaluationRepository) SummariesByProfessor(ctx context.Context, professorIDs []string, from, to *time.Time) ([]models.ProfessorRatingSummary, error) {
	if len(professorIDs) == 0 {
		return []models.ProfessorRatingSummary{}, nil
	}
	conditions := []string{"e.professor_id = ANY($1)"}
	args := []interface{}{pq.Array(professorIDs)}
	conditions, args = appendRange(conditions, args, from, to)

	query := `SELECT e.professor_id, COUNT(*) AS total, COALESCE(AVG(e.overall_rating), 0) AS average_rating FROM evaluations e WHERE ` +
		strings.Join(conditions, " AND ") + ` GROUP BY e.professor_id`
	var rows []models.ProfessorRatingSummary
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("summarise professors: %w", err)
	}
	return rows, nil
}

// CreateWithResponses stores an evaluation and its answers atomically. A duplicate
// submission surfaces as the postgres unique violation on the evaluation row.
func (r *EvaluationRepository) CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) (err error) {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create evaluation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertEvaluation = `INSERT INTO evaluations (id, student_id, professor_id, group_id, period, overall_rating, comments, created_at) VALUES (:id, :student_id, :professor_id, :group_id, :period, :overall_rating, :comments, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertEvaluation, evaluation); err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}

	const insertResponse = `INSERT INTO evaluation_responses (id, evaluation_id, question_id, rating, text_answer, selected_option) VALUES (:id, :evaluation_id, :question_id, :rating, :text_answer, :selected_option)`
	for i := range responses {
		if responses[i].ID == "" {
			responses[i].ID = uuid.NewString()
		}
		responses[i].EvaluationID = evaluation.ID
		if _, err = tx.NamedExecContext(ctx, insertResponse, responses[i]); err != nil {
			return fmt.Errorf("insert evaluation response: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create evaluation: %w", err)
	}
	return nil
}

// appendRange adds the half-open [from, to) created_at bounds.
func appendRange(conditions []string, args []interface{}, from, to *time.Time) ([]string, []interface{}) {
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("e.created_at >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("e.created_at < $%d", len(args)+1))
		args = append(args, *to)
	}
	return conditions, args
}
