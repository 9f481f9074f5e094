package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/pkg/database"
)

var statColumns = []string{"id", "student_id", "professor_id", "group_id", "overall_rating", "comments", "created_at"}

func TestEvaluationRepositoryListForStatsByProfessorAndRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.student_id, e.professor_id, e.group_id, e.overall_rating, e.comments, e.created_at FROM evaluations e WHERE e.professor_id = ANY($1) AND e.created_at >= $2 AND e.created_at < $3 ORDER BY e.created_at DESC")).
		WithArgs(sqlmock.AnyArg(), from, to).
		WillReturnRows(sqlmock.NewRows(statColumns).
			AddRow("e-1", "s-1", "p-1", "g-1", 4, nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).
			AddRow("e-2", nil, "p-1", nil, 5, "great", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	rows, err := repo.ListForStats(context.Background(), models.EvaluationStatsFilter{ProfessorIDs: []string{"p-1"}, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4.0, rows[0].OverallRating)
	assert.Nil(t, rows[1].StudentID)
	require.NotNil(t, rows[1].Comments)
	assert.Equal(t, "great", *rows[1].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListForStatsByCareerJoinsCourses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM evaluations e JOIN class_groups g ON g.id = e.group_id JOIN courses c ON c.id = g.course_id WHERE c.career_id = $1 ORDER BY e.created_at DESC")).
		WithArgs("car-1").
		WillReturnRows(sqlmock.NewRows(statColumns))

	rows, err := repo.ListForStats(context.Background(), models.EvaluationStatsFilter{CareerID: "car-1"})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositorySummariesByProfessor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	empty, err := repo.SummariesByProfessor(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.professor_id, COUNT(*) AS total, COALESCE(AVG(e.overall_rating), 0) AS average_rating FROM evaluations e WHERE e.professor_id = ANY($1) GROUP BY e.professor_id")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"professor_id", "total", "average_rating"}).AddRow("p-1", 3, 4.0))

	rows, err := repo.SummariesByProfessor(context.Background(), []string{"p-1", "p-2"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryCreateWithResponses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	rating := 4
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO evaluation_responses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO evaluation_responses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	evaluation := &models.Evaluation{StudentID: "s-1", ProfessorID: "p-1", GroupID: "g-1", Period: "2024-1", OverallRating: 5}
	responses := []models.EvaluationResponse{{QuestionID: "q-1", Rating: &rating}, {QuestionID: "q-2"}}
	require.NoError(t, repo.CreateWithResponses(context.Background(), evaluation, responses))

	assert.NotEmpty(t, evaluation.ID)
	assert.False(t, evaluation.CreatedAt.IsZero())
	for _, r := range responses {
		assert.Equal(t, evaluation.ID, r.EvaluationID)
		assert.NotEmpty(t, r.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryCreateDuplicateRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO evaluations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: models.EvaluationUniqueConstraint})
	mock.ExpectRollback()

	err := repo.CreateWithResponses(context.Background(), &models.Evaluation{StudentID: "s-1", ProfessorID: "p-1", GroupID: "g-1", Period: "2024-1", OverallRating: 3}, nil)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err, models.EvaluationUniqueConstraint))
	assert.NoError(t, mock.ExpectationsWereMet())
}
