package app

import (
	"net/http"
	"strings"

	"library-management-api/db"
	"library-management-api/models"
	"library-management-api/session"

	"github.com/gin-gonic/gin"
)

// CurrentUser returns the authenticated user set by AuthRequired, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// AuthRequired resolves `Authorization: Bearer <token>` against the token
// store, confirms the user still exists, and stashes both in the context.
func AuthRequired(tokens session.Store, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Unauthenticated"})
			return
		}

		t, err := tokens.Get(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Unauthenticated"})
			return
		}

		// 确认用户仍存在（删除用户后令牌立即失效）
		u, err := repo.FindUserByID(c.Request.Context(), t.UserID)
		if err != nil {
			_ = tokens.Delete(c.Request.Context(), raw)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Unauthenticated"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("user", u)
		c.Set("token", raw)
		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"message": "Unauthenticated"})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
