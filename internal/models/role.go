package models

import (
	"sort"
	"strings"
)

// Role is a named capability bundle held by a user. A user may hold several.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDean        Role = "dean"
	RoleCoordinator Role = "coordinator"
	RoleProfessor   Role = "professor"
	RoleInstructor  Role = "instructor"
	RoleStudent     Role = "student"
)

// Permission is a single capability checked by CanAccess.
type Permission string

const (
	PermAll               Permission = "all"
	PermViewEvaluations   Permission = "view_evaluations"
	PermCreateEvaluations Permission = "create_evaluations"
	PermSubmitEvaluations Permission = "submit_evaluations"
	PermViewReports       Permission = "view_reports"
	PermManageUsers       Permission = "manage_users"
	PermManageDepartment  Permission = "manage_department"
	PermManageFaculty     Permission = "manage_faculty"
	PermViewAllProfessors Permission = "view_all_professors"
	PermViewAllCareers    Permission = "view_all_careers"
)

// Dashboard routes returned by DashboardFor.
const (
	DefaultDashboard     = "/dashboard"
	dashboardAdmin       = "/admin/dashboard"
	dashboardDean        = "/dean/dashboard"
	dashboardCoordinator = "/coordinator/dashboard"
	dashboardProfessor   = "/professor/dashboard"
	dashboardStudent     = "/student/dashboard"
)

// RolePermissions is the fixed role -> permission table.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {PermAll},
	RoleDean: {
		PermViewEvaluations, PermCreateEvaluations, PermViewReports, PermManageUsers,
		PermManageDepartment, PermManageFaculty, PermViewAllProfessors, PermViewAllCareers,
	},
	RoleCoordinator: {
		PermViewEvaluations, PermCreateEvaluations, PermViewReports, PermManageUsers, PermManageDepartment,
	},
	RoleProfessor:  {PermViewEvaluations, PermCreateEvaluations, PermViewReports},
	RoleInstructor: {PermViewEvaluations, PermCreateEvaluations, PermViewReports},
	RoleStudent:    {PermViewEvaluations, PermSubmitEvaluations},
}

// dashboardPriority is ordered highest priority first.
var dashboardPriority = []struct {
	roles []Role
	route string
}{
	{[]Role{RoleAdmin}, dashboardAdmin},
	{[]Role{RoleDean}, dashboardDean},
	{[]Role{RoleCoordinator}, dashboardCoordinator},
	{[]Role{RoleProfessor, RoleInstructor}, dashboardProfessor},
	{[]Role{RoleStudent}, dashboardStudent},
}

// roleAliases maps legacy spellings still present in older rows and clients.
var roleAliases = map[string]Role{
	"admin":         RoleAdmin,
	"administrador": RoleAdmin,
	"dean":          RoleDean,
	"decano":        RoleDean,
	"coordinator":   RoleCoordinator,
	"coordinador":   RoleCoordinator,
	"professor":     RoleProfessor,
	"profesor":      RoleProfessor,
	"docente":       RoleProfessor,
	"instructor":    RoleInstructor,
	"student":       RoleStudent,
	"estudiante":    RoleStudent,
	"alumno":        RoleStudent,
}

// ParseRole normalises a role name. The boolean is false for unknown roles.
func ParseRole(raw string) (Role, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}

// Spellings lists every stored name that normalises to r, canonical first.
func (r Role) Spellings() []string {
	out := []string{string(r)}
	for alias, role := range roleAliases {
		if role == r && alias != string(r) {
			out = append(out, alias)
		}
	}
	sort.Strings(out[1:])
	return out
}

// IsTeaching reports whether the role is one of the professor-like roles.
func (r Role) IsTeaching() bool {
	return r == RoleProfessor || r == RoleInstructor
}

// RoleSet is a deduplicated collection of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from canonical roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether any of roles is present.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Sorted returns the roles in lexical order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissionSet is the resolved capability set of a role set.
type PermissionSet map[Permission]struct{}

// PermissionsFor resolves the permissions granted by roles. Admin collapses to PermAll.
func PermissionsFor(roles RoleSet) PermissionSet {
	perms := make(PermissionSet)
	if roles.Has(RoleAdmin) {
		perms[PermAll] = struct{}{}
		return perms
	}
	for role := range roles {
		for _, p := range RolePermissions[role] {
			perms[p] = struct{}{}
		}
	}
	return perms
}

// Allows is true when the set holds PermAll or perm itself.
func (p PermissionSet) Allows(perm Permission) bool {
	if _, ok := p[PermAll]; ok {
		return true
	}
	_, ok := p[perm]
	return ok
}

// Sorted returns the permissions in lexical order.
func (p PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(p))
	for perm := range p {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DashboardFor picks the landing route of the highest-priority role held.
func DashboardFor(roles RoleSet) string {
	for _, entry := range dashboardPriority {
		if roles.HasAny(entry.roles...) {
			return entry.route
		}
	}
	return DefaultDashboard
}
