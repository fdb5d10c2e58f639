package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streakmate/streakmate/config"
	"github.com/streakmate/streakmate/utils"
)

// AdminRequired allows only usernames listed in the admin configuration.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		name, _ := ctx.Get(ContextUsernameKey)
		username, _ := name.(string)
		if username == "" || !isAdmin(username) {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func isAdmin(username string) bool {
	for _, admin := range config.Get().AdminUsernames {
		if admin == username {
			return true
		}
	}
	return false
}
