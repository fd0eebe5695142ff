package middleware

import (
	"context"
	"strings"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key holding the authenticated *models.User
const UserKey = "user"

// Authenticator resolves a bearer token to a user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.LogError("Missing Authorization header")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			utils.LogError("Invalid Bearer token format")
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			utils.LogError("Authentication failed: %v", err)
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		utils.LogDebug("User %s authenticated", user.ID)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
