package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/dto"
	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

type roleService interface {
	Profile(ctx context.Context, userID string) (*models.UserProfile, error)
	ListAssignments(ctx context.Context, userID string) ([]models.RoleAssignment, error)
	AssignRole(ctx context.Context, userID string, req dto.AssignRoleRequest) ([]models.Role, error)
	RevokeRole(ctx context.Context, userID, role string) ([]models.Role, error)
}

// UserHandler serves the caller's profile and role administration.
type UserHandler struct {
	roles roleService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(roles roleService) *UserHandler {
	return &UserHandler{roles: roles}
}

// Me godoc
// @Summary Current user profile
// @Description Returns the caller with active roles, permissions and landing dashboard
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	profile, err := h.roles.Profile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, profile)
}

// ListRoles godoc
// @Summary List role assignments
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/roles [get]
func (h *UserHandler) ListRoles(c *gin.Context) {
	rows, err := h.roles.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, rows)
}

// AssignRole godoc
// @Summary Assign a role
// @Description Activates a role and creates the matching profile. Coordinators need career_id.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.AssignRoleRequest true "Role assignment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/roles [post]
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}
	roles, err := h.roles.AssignRole(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"roles": roles})
}

// RevokeRole godoc
// @Summary Revoke a role
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param role path string true "Role name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/roles/{role} [delete]
func (h *UserHandler) RevokeRole(c *gin.Context) {
	roles, err := h.roles.RevokeRole(c.Request.Context(), c.Param("id"), c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, gin.H{"roles": roles})
}
