package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoleAliases(t *testing.T) {
	cases := map[string]Role{
		"profesor":     RoleProfessor,
		" Coordinador": RoleCoordinator,
		"DECANO":       RoleDean,
		"estudiante":   RoleStudent,
		"instructor":   RoleInstructor,
		"admin":        RoleAdmin,
	}
	for raw, want := range cases {
		got, ok := ParseRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseRole("janitor")
	assert.False(t, ok)
}

func TestRoleSpellings(t *testing.T) {
	assert.Equal(t, []string{"professor", "docente", "profesor"}, RoleProfessor.Spellings())
	assert.Equal(t, []string{"instructor"}, RoleInstructor.Spellings())
}

func TestPermissionsForAdminSatisfiesEverything(t *testing.T) {
	perms := PermissionsFor(NewRoleSet(RoleStudent, RoleAdmin))
	assert.Equal(t, []Permission{PermAll}, perms.Sorted())
	for _, p := range []Permission{PermViewReports, PermManageFaculty, PermViewAllCareers, PermSubmitEvaluations, "anything"} {
		assert.True(t, perms.Allows(p), p)
	}
}

func TestPermissionsForUnion(t *testing.T) {
	perms := PermissionsFor(NewRoleSet(RoleProfessor, RoleCoordinator))
	assert.True(t, perms.Allows(PermManageDepartment))
	assert.True(t, perms.Allows(PermViewReports))
	assert.False(t, perms.Allows(PermViewAllCareers))
	assert.False(t, perms.Allows(PermSubmitEvaluations))

	student := PermissionsFor(NewRoleSet(RoleStudent))
	assert.Equal(t, []Permission{PermSubmitEvaluations, PermViewEvaluations}, student.Sorted())
	assert.False(t, student.Allows(PermViewReports))

	assert.Empty(t, PermissionsFor(NewRoleSet()))
}

func TestDashboardPriority(t *testing.T) {
	assert.Equal(t, "/coordinator/dashboard", DashboardFor(NewRoleSet(RoleProfessor, RoleCoordinator)))
	assert.Equal(t, "/coordinator/dashboard", DashboardFor(NewRoleSet(RoleCoordinator, RoleProfessor)))
	assert.Equal(t, "/admin/dashboard", DashboardFor(NewRoleSet(RoleStudent, RoleDean, RoleAdmin)))
	assert.Equal(t, "/dean/dashboard", DashboardFor(NewRoleSet(RoleDean, RoleCoordinator)))
	assert.Equal(t, "/professor/dashboard", DashboardFor(NewRoleSet(RoleInstructor, RoleStudent)))
	assert.Equal(t, "/student/dashboard", DashboardFor(NewRoleSet(RoleStudent)))
	assert.Equal(t, DefaultDashboard, DashboardFor(NewRoleSet()))
}
