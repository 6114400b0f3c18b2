package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
	"github.com/hiraya-scholars/hiraya-api/pkg/response"
)

// RequireStaff blocks callers whose token carries no staff role label. The
// permission set derives from the label alone, so an unknown label fails
// closed here too.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.Permissions().CanReviewApplications {
			response.Error(c, appErrors.Clone(appErrors.ErrPermissionDenied, "staff access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission gates a route on a single capability from the actor's
// permission set.
func RequirePermission(check func(models.PermissionSet) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !check(claims.Permissions()) {
			response.Error(c, appErrors.ErrPermissionDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
