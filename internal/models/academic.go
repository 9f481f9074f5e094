package models

import "time"

// Career is a degree program. It owns courses and coordinator scope.
type Career struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Code   string `db:"code" json:"code"`
	Active bool   `db:"active" json:"active"`
}

// Course belongs to one career. Professors reach it through CourseAssignment.
type Course struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Code     string  `db:"code" json:"code"`
	Credits  int     `db:"credits" json:"credits"`
	CareerID *string `db:"career_id" json:"career_id,omitempty"`
	Active   bool    `db:"active" json:"active"`
}

// Group is a scheduled section of a course for one academic period.
type Group struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Name     string `db:"name" json:"name"`
	Period   string `db:"period" json:"period"`
	Active   bool   `db:"active" json:"active"`
}

// GroupDetail is a group joined with its course and career labels.
type GroupDetail struct {
	Group
	CourseName string  `db:"course_name" json:"course_name"`
	CourseCode string  `db:"course_code" json:"course_code"`
	CareerID   *string `db:"career_id" json:"career_id,omitempty"`
}

// GroupCourse maps a group id to its course id.
type GroupCourse struct {
	GroupID  string `db:"group_id"`
	CourseID string `db:"course_id"`
}

// CourseAssignment links a professor to a course through a group.
type CourseAssignment struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	ProfessorID string    `db:"professor_id" json:"professor_id"`
	GroupID     string    `db:"group_id" json:"group_id"`
	Period      string    `db:"period" json:"period"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Professor is the teaching profile of a user holding the professor role.
type Professor struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CareerID  *string   `db:"career_id" json:"career_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfessorDetail adds display fields from users and careers.
type ProfessorDetail struct {
	Professor
	FullName   string  `db:"full_name" json:"full_name"`
	Email      string  `db:"email" json:"email"`
	CareerName *string `db:"career_name" json:"career_name,omitempty"`
}

// Coordinator scopes a user to one career.
type Coordinator struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CareerID  string    `db:"career_id" json:"career_id"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Dean scopes a user to the whole faculty.
type Dean struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Faculty   *string   `db:"faculty" json:"faculty,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student is the enrolment profile of a user holding the student role.
type Student struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"user_id"`
	StudentCode string  `db:"student_code" json:"student_code"`
	CareerID    *string `db:"career_id" json:"career_id,omitempty"`
	Active      bool    `db:"active" json:"active"`
}

// Enrollment places a student in a group.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	GroupID    string    `db:"group_id" json:"group_id"`
	Active     bool      `db:"active" json:"active"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrolledProfessor is one professor a student may evaluate through a group.
type EnrolledProfessor struct {
	GroupID     string `db:"group_id" json:"group_id"`
	ProfessorID string `db:"professor_id" json:"professor_id"`
	FullName    string `db:"full_name" json:"full_name"`
	Evaluated   bool   `db:"evaluated" json:"evaluated"`
}
