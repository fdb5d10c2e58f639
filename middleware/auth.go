package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streakmate/streakmate/utils"
)

// Context keys populated by AuthRequired.
const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

func reject(ctx *gin.Context, code int, message string) {
	utils.Error(ctx, http.StatusUnauthorized, code, message)
	ctx.Abort()
}

// AuthRequired authenticates the request from its Bearer token and stores the
// caller's identity in the Gin context. Revoked tokens are refused even while
// still inside their expiry window.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			reject(ctx, 40101, "authorization header missing")
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			reject(ctx, 40102, "invalid authorization header format")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			reject(ctx, 40103, "empty bearer token")
			return
		}
		if utils.IsTokenBlacklisted(token) {
			reject(ctx, 40104, "token revoked")
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			reject(ctx, 40105, "invalid token")
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// CurrentUserID returns the authenticated user id, or 0 when the request
// never passed AuthRequired.
func CurrentUserID(ctx *gin.Context) uint {
	if v, ok := ctx.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
