package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eval-api/internal/models"
)

// QuestionRepository reads the evaluation question catalog.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository constructs a QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListForCareer returns the general questions plus those scoped to careerID.
// A nil careerID yields the general questions only.
func (r *QuestionRepository) ListForCareer(ctx context.Context, careerID *string) ([]models.EvaluationQuestion, error) {
	const query = `SELECT id, category, text, type, options, sort_order, required, career_id FROM evaluation_questions
WHERE active = TRUE AND (career_id IS NULL OR career_id = $1)
ORDER BY sort_order, id`
	var questions []models.EvaluationQuestion
	if err := r.db.SelectContext(ctx, &questions, query, careerID); err != nil {
		return nil, fmt.Errorf("list evaluation questions: %w", err)
	}
	return questions, nil
}
