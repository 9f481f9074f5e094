package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eval-api/internal/models"
)

func TestRoleRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles")).
		WithArgs(sqlmock.AnyArg(), "u-1", "coordinator", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), "u-1", models.RoleCoordinator))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_roles SET active = FALSE")).
		WithArgs("u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_roles SET active = FALSE")).
		WithArgs("u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.Deactivate(context.Background(), "u-1", models.RoleProfessor)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Deactivate(context.Background(), "u-1", models.RoleProfessor)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM user_roles WHERE user_id = $1 AND active = TRUE ORDER BY role")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("coordinador").AddRow("professor"))

	roles, err := repo.ListActive(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"coordinador", "professor"}, roles)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, role, active, assigned_at, updated_at FROM user_roles")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role", "active", "assigned_at", "updated_at"}).
			AddRow("r-1", "u-1", "student", false, time.Now(), time.Now()))

	assignments, err := repo.ListAssignments(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.False(t, assignments[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
