package models

import (
	"time"

	"github.com/lib/pq"
)

// QuestionType decides which response field a question populates.
type QuestionType string

const (
	QuestionRating QuestionType = "rating"
	QuestionText   QuestionType = "text"
	QuestionOption QuestionType = "option"
)

// Rating bounds shared by overall ratings and rating questions.
const (
	MinRating = 1
	MaxRating = 5
)

// EvaluationUniqueConstraint guards one evaluation per (student, professor, group, period).
const EvaluationUniqueConstraint = "evaluations_unique_submission"

// Evaluation is a student's single assessment of a professor within a group and period.
type Evaluation struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	ProfessorID   string    `db:"professor_id" json:"professor_id"`
	GroupID       string    `db:"group_id" json:"group_id"`
	Period        string    `db:"period" json:"period"`
	OverallRating int       `db:"overall_rating" json:"overall_rating"`
	Comments      *string   `db:"comments" json:"comments,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// EvaluationResponse answers one question. Only the field matching the question type is set.
type EvaluationResponse struct {
	ID             string  `db:"id" json:"id"`
	EvaluationID   string  `db:"evaluation_id" json:"evaluation_id"`
	QuestionID     string  `db:"question_id" json:"question_id"`
	Rating         *int    `db:"rating" json:"rating,omitempty"`
	TextAnswer     *string `db:"text_answer" json:"text_answer,omitempty"`
	SelectedOption *string `db:"selected_option" json:"selected_option,omitempty"`
}

// EvaluationQuestion belongs to the general catalog when CareerID is nil.
type EvaluationQuestion struct {
	ID        string         `db:"id" json:"id"`
	Category  string         `db:"category" json:"category"`
	Text      string         `db:"text" json:"text"`
	Type      QuestionType   `db:"type" json:"type"`
	Options   pq.StringArray `db:"options" json:"options,omitempty"`
	SortOrder int            `db:"sort_order" json:"order"`
	Required  bool           `db:"required" json:"required"`
	CareerID  *string        `db:"career_id" json:"career_id,omitempty"`
}

// EvaluationStatRow is the projection the aggregator works on. Foreign keys
// are nullable because legacy rows may reference deleted entities.
type EvaluationStatRow struct {
	ID            string    `db:"id"`
	StudentID     *string   `db:"student_id"`
	ProfessorID   *string   `db:"professor_id"`
	GroupID       *string   `db:"group_id"`
	OverallRating float64   `db:"overall_rating"`
	Comments      *string   `db:"comments"`
	CreatedAt     time.Time `db:"created_at"`
}

// EvaluationStatsFilter scopes the rows fetched for aggregation. Empty fields are ignored.
type EvaluationStatsFilter struct {
	ProfessorIDs []string
	CourseID     string
	CareerID     string
	From         *time.Time
	To           *time.Time
}

// ProfessorRatingSummary is the per-professor count and mean used by roster views.
type ProfessorRatingSummary struct {
	ProfessorID   string  `db:"professor_id"`
	Total         int     `db:"total"`
	AverageRating float64 `db:"average_rating"`
}
