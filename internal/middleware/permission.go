package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eval-api/internal/models"
	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

// AccessChecker answers permission questions from the role store.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID string, perm models.Permission) bool
}

// RequirePermission lets the request through when the caller holds perm (or the
// all sentinel). Roles are looked up on every request so revocations apply at once.
func RequirePermission(access AccessChecker, perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !access.CanAccess(c.Request.Context(), claims.UserID, perm) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "missing permission "+string(perm)))
			c.Abort()
			return
		}
		c.Next()
	}
}
