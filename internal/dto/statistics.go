package dto

import "time"

// EvaluationStatistics is the aggregate computed for a scope. Averages are 0
// for empty scopes and collections are never null.
type EvaluationStatistics struct {
	Period                      string             `json:"period,omitempty"`
	TotalEvaluations            int                `json:"totalEvaluations"`
	AverageRating               float64            `json:"averageRating"`
	DistinctStudents            int                `json:"distinctStudents"`
	DistinctProfessorsEvaluated int                `json:"distinctProfessorsEvaluated"`
	DistinctCoursesEvaluated    int                `json:"distinctCoursesEvaluated"`
	PerCourseBreakdown          []CourseBreakdown  `json:"perCourseBreakdown"`
	RecentEvaluations           []RecentEvaluation `json:"recentEvaluations"`
}

// CourseBreakdown is the per-course slice of an aggregate.
type CourseBreakdown struct {
	CourseID      string  `json:"courseId"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average"`
}

// RecentEvaluation is one of the newest evaluations in scope.
type RecentEvaluation struct {
	ID            string    `json:"id"`
	ProfessorID   string    `json:"professorId,omitempty"`
	GroupID       string    `json:"groupId,omitempty"`
	CourseID      string    `json:"courseId,omitempty"`
	CourseName    string    `json:"courseName"`
	CourseCode    string    `json:"courseCode"`
	OverallRating float64   `json:"overallRating"`
	Comments      *string   `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProfessorSummary is the compact per-professor figure used in rosters.
type ProfessorSummary struct {
	ProfessorID      string  `json:"professorId"`
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	TotalEvaluations int     `json:"totalEvaluations"`
	AverageRating    float64 `json:"averageRating"`
}

// EmptyStatistics returns the zeroed statistics shape for period.
func EmptyStatistics(period string) EvaluationStatistics {
	return EvaluationStatistics{
		Period:             period,
		PerCourseBreakdown: []CourseBreakdown{},
		RecentEvaluations:  []RecentEvaluation{},
	}
}
