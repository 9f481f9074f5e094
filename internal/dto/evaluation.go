package dto

import "github.com/noah-isme/course-eval-api/internal/models"

// SubmitEvaluationRequest is the student survey payload.
type SubmitEvaluationRequest struct {
	ProfessorID   string          `json:"professor_id" validate:"required"`
	GroupID       string          `json:"group_id" validate:"required"`
	OverallRating int             `json:"overall_rating" validate:"required,min=1,max=5"`
	Comments      *string         `json:"comments" validate:"omitempty,max=2000"`
	Answers       []AnswerRequest `json:"answers" validate:"dive"`
}

// AnswerRequest answers one catalog question.
type AnswerRequest struct {
	QuestionID     string  `json:"question_id" validate:"required"`
	Rating         *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	TextAnswer     *string `json:"text_answer" validate:"omitempty,max=2000"`
	SelectedOption *string `json:"selected_option" validate:"omitempty,max=255"`
}

// SubmitEvaluationResponse echoes the stored evaluation.
type SubmitEvaluationResponse struct {
	Evaluation models.Evaluation           `json:"evaluation"`
	Responses  []models.EvaluationResponse `json:"responses"`
}

// StudentGroup is an enrolled group with the professors the student may evaluate.
type StudentGroup struct {
	Group      models.GroupDetail         `json:"group"`
	Professors []models.EnrolledProfessor `json:"professors"`
}

// AssignRoleRequest grants a role. CareerID is required for coordinators.
type AssignRoleRequest struct {
	Role     string  `json:"role" validate:"required"`
	CareerID *string `json:"career_id" validate:"omitempty"`
	Faculty  *string `json:"faculty" validate:"omitempty,max=255"`
}
