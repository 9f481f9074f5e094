package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepositoryCourseIDsByGroupIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	none, err := repo.CourseIDsByGroupIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id AS group_id, course_id FROM class_groups WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"group_id", "course_id"}).AddRow("g-1", "c-1").AddRow("g-2", "c-1"))

	rows, err := repo.CourseIDsByGroupIDs(context.Background(), []string{"g-1", "g-2"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c-1", rows[1].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, credits, career_id, active FROM courses WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "credits", "career_id", "active"}).
			AddRow("c-1", "Algebra", "MAT101", 4, "car-1", true))

	courses, err := repo.FindByIDs(context.Background(), []string{"c-1"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "MAT101", courses[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCareerRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCareerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, active FROM careers WHERE id = $1 AND active = TRUE")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "active"}))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryIsEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments e")).
		WithArgs("s-1", "g-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments e")).
		WithArgs("s-1", "g-2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.IsEnrolled(context.Background(), "s-1", "g-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsEnrolled(context.Background(), "s-1", "g-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfessorRepositoryEnsureForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProfessorRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO professors")).
		WithArgs(sqlmock.AnyArg(), "u-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE professors SET active = FALSE")).
		WithArgs("u-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.EnsureForUser(context.Background(), "u-1", nil))
	require.NoError(t, repo.DeactivateByUser(context.Background(), "u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepositoryListForCareer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuestionRepository(db)

	career := "car-1"
	mock.ExpectQuery(regexp.QuoteMeta("FROM evaluation_questions")).
		WithArgs(career).
		WillReturnRows(sqlmock.NewRows([]string{"id", "category", "text", "type", "options", "sort_order", "required", "career_id"}).
			AddRow("q-1", "teaching", "Explains clearly", "rating", nil, 1, true, nil).
			AddRow("q-2", "format", "Preferred format", "option", "{online,onsite}", 2, false, career))

	questions, err := repo.ListForCareer(context.Background(), &career)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, []string{"online", "onsite"}, []string(questions[1].Options))
	assert.Nil(t, questions[0].CareerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
