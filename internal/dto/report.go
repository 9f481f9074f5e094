package dto

import "github.com/noah-isme/course-eval-api/internal/models"

// ProfessorStatisticsResponse is returned for a single professor scope.
// Professor is nil when the id does not resolve; statistics are then zeroed.
type ProfessorStatisticsResponse struct {
	Professor  *models.ProfessorDetail `json:"professor"`
	Statistics EvaluationStatistics    `json:"statistics"`
}

// CourseStatisticsResponse is returned for a single course scope.
type CourseStatisticsResponse struct {
	Course     *models.Course       `json:"course"`
	Statistics EvaluationStatistics `json:"statistics"`
}

// CareerReport is the coordinator/dean view of one career.
type CareerReport struct {
	Career     *models.Career       `json:"career"`
	Statistics EvaluationStatistics `json:"statistics"`
	Professors []ProfessorSummary   `json:"professors"`
}

// CareerSummary is one row of the faculty-wide report.
type CareerSummary struct {
	CareerID                    string  `json:"careerId"`
	Name                        string  `json:"name"`
	Code                        string  `json:"code"`
	ProfessorCount              int     `json:"professorCount"`
	TotalEvaluations            int     `json:"totalEvaluations"`
	AverageRating               float64 `json:"averageRating"`
	DistinctProfessorsEvaluated int     `json:"distinctProfessorsEvaluated"`
}

// AllCareersReport is the dean view across the faculty.
type AllCareersReport struct {
	Period  string               `json:"period,omitempty"`
	Totals  EvaluationStatistics `json:"totals"`
	Careers []CareerSummary      `json:"careers"`
}
