package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
)

// TokenVerifier 校验令牌并返回用户 ID
type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// Auth JWT 认证中间件
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			response.AuthError(c, "authorization header must use the Bearer scheme")
			c.Abort()
			return
		}

		userID, err := verifier.VerifyToken(tokenString)
		if err != nil {
			response.AuthError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
