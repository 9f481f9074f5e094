package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

type roleRepository interface {
	Upsert(ctx context.Context, userID string, role models.Role) error
	Deactivate(ctx context.Context, userID string, role models.Role) (bool, error)
	ListActive(ctx context.Context, userID string) ([]string, error)
	ListAssignments(ctx context.Context, userID string) ([]models.RoleAssignment, error)
}

type roleUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type professorProfileRepository interface {
	EnsureForUser(ctx context.Context, userID string, careerID *string) error
	DeactivateByUser(ctx context.Context, userID string) error
}

type coordinatorProfileRepository interface {
	EnsureForUser(ctx context.Context, userID, careerID string) error
	DeactivateByUser(ctx context.Context, userID string) error
}

type deanProfileRepository interface {
	EnsureForUser(ctx context.Context, userID string, faculty *string) error
	DeactivateByUser(ctx context.Context, userID string) error
}

type careerLookup interface {
	FindByID(ctx context.Context, id string) (*models.Career, error)
}

// RoleProfiles groups the per-role entity tables kept in sync with role assignments.
type RoleProfiles struct {
	Professors   professorProfileRepository
	Coordinators coordinatorProfileRepository
	Deans        deanProfileRepository
	Careers      careerLookup
}

// RoleService resolves roles, permissions and dashboards, and manages assignments.
// Every read path fails closed: a store error is logged and treated as "no roles".
type RoleService struct {
	roles     roleRepository
	users     roleUserRepository
	profiles  RoleProfiles
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(roles roleRepository, users roleUserRepository, profiles RoleProfiles, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &RoleService{roles: roles, users: users, profiles: profiles, validator: validate, logger: logger}
}

// RoleSet returns the caller's active canonical roles. Unknown stored names are ignored.
func (s *RoleService) RoleSet(ctx context.Context, userID string) models.RoleSet {
	if userID == "" {
		return models.NewRoleSet()
	}
	set, err := s.activeRoles(ctx, userID)
	if err != nil {
		s.logger.Warn("role lookup failed, denying", zap.String("user_id", userID), zap.Error(err))
		return models.NewRoleSet()
	}
	return set
}

// activeRoles reads the store without failing closed; write paths need the error.
func (s *RoleService) activeRoles(ctx context.Context, userID string) (models.RoleSet, error) {
	raw, err := s.roles.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := models.NewRoleSet()
	for _, name := range raw {
		role, ok := models.ParseRole(name)
		if !ok {
			s.logger.Debug("ignoring unknown role", zap.String("user_id", userID), zap.String("role", name))
			continue
		}
		set[role] = struct{}{}
	}
	return set, nil
}

// GetActiveRoles returns the active roles sorted for determinism.
func (s *RoleService) GetActiveRoles(ctx context.Context, userID string) []models.Role {
	return s.RoleSet(ctx, userID).Sorted()
}

// HasRole reports whether role is active for the user. Errors count as false.
func (s *RoleService) HasRole(ctx context.Context, userID string, role models.Role) bool {
	return s.RoleSet(ctx, userID).Has(role)
}

// GetPermissions maps the active roles through the permission table.
func (s *RoleService) GetPermissions(ctx context.Context, userID string) []models.Permission {
	return models.PermissionsFor(s.RoleSet(ctx, userID)).Sorted()
}

// CanAccess reports whether the user holds perm or the all sentinel.
func (s *RoleService) CanAccess(ctx context.Context, userID string, perm models.Permission) bool {
	return models.PermissionsFor(s.RoleSet(ctx, userID)).Allows(perm)
}

// GetDefaultDashboard resolves the landing route of the highest-priority role.
func (s *RoleService) GetDefaultDashboard(ctx context.Context, userID string) string {
	return models.DashboardFor(s.RoleSet(ctx, userID))
}

// Profile returns the user together with roles, permissions and dashboard.
func (s *RoleService) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	return s.profileFor(ctx, user), nil
}

func (s *RoleService) profileFor(ctx context.Context, user *models.User) *models.UserProfile {
	roles := s.RoleSet(ctx, user.ID)
	return &models.UserProfile{
		User:        *user,
		Roles:       roles.Sorted(),
		Permissions: models.PermissionsFor(roles).Sorted(),
		Dashboard:   models.DashboardFor(roles),
	}
}

// ListAssignments returns every assignment row of an existing user.
func (s *RoleService) ListAssignments(ctx context.Context, userID string) ([]models.RoleAssignment, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	rows, err := s.roles.ListAssignments(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role assignments")
	}
	if rows == nil {
		rows = []models.RoleAssignment{}
	}
	return rows, nil
}

// AssignRole activates a role for the user and creates the matching profile.
// Assigning an already active role succeeds without changing anything.
func (s *RoleService) AssignRole(ctx context.Context, userID string, req dto.AssignRoleRequest) ([]models.Role, error) {
	fields := fieldErrors(s.validator.Struct(req))
	role, ok := models.ParseRole(req.Role)
	if req.Role != "" && !ok {
		fields = append(fields, appErrors.FieldError{Field: "role", Message: "unknown role"})
	}
	if role == models.RoleCoordinator && (req.CareerID == nil || *req.CareerID == "") {
		fields = append(fields, appErrors.FieldError{Field: "career_id", Message: "is required for coordinators"})
	}
	if len(fields) > 0 {
		return nil, validationError("invalid role assignment", fields)
	}

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	if req.CareerID != nil && *req.CareerID != "" {
		if err := s.ensureCareer(ctx, *req.CareerID); err != nil {
			return nil, err
		}
	}

	if err := s.roles.Upsert(ctx, userID, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign role")
	}

	var err error
	switch {
	case role.IsTeaching():
		err = s.profiles.Professors.EnsureForUser(ctx, userID, nonEmpty(req.CareerID))
	case role == models.RoleCoordinator:
		err = s.profiles.Coordinators.EnsureForUser(ctx, userID, *req.CareerID)
	case role == models.RoleDean:
		err = s.profiles.Deans.EnsureForUser(ctx, userID, nonEmpty(req.Faculty))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role profile")
	}

	s.logger.Info("role assigned", zap.String("user_id", userID), zap.String("role", string(role)))
	return s.GetActiveRoles(ctx, userID), nil
}

// RevokeRole deactivates a role without deleting its row, then deactivates the
// matching profile. The professor profile survives while instructor is still held.
func (s *RoleService) RevokeRole(ctx context.Context, userID, rawRole string) ([]models.Role, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, validationError("invalid role revocation", []appErrors.FieldError{{Field: "role", Message: "unknown role"}})
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	changed, err := s.roles.Deactivate(ctx, userID, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke role")
	}

	remaining, err := s.activeRoles(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load remaining roles")
	}
	switch {
	case role.IsTeaching() && !remaining.HasAny(models.RoleProfessor, models.RoleInstructor):
		err = s.profiles.Professors.DeactivateByUser(ctx, userID)
	case role == models.RoleCoordinator:
		err = s.profiles.Coordinators.DeactivateByUser(ctx, userID)
	case role == models.RoleDean:
		err = s.profiles.Deans.DeactivateByUser(ctx, userID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate role profile")
	}

	if changed {
		s.logger.Info("role revoked", zap.String("user_id", userID), zap.String("role", string(role)))
	}
	return remaining.Sorted(), nil
}

func (s *RoleService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *RoleService) ensureCareer(ctx context.Context, careerID string) error {
	if s.profiles.Careers == nil {
		return nil
	}
	if _, err := s.profiles.Careers.FindByID(ctx, careerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return validationError("invalid role assignment", []appErrors.FieldError{{Field: "career_id", Message: "career not found"}})
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career")
	}
	return nil
}

func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
