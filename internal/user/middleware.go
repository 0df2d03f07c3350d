package user

import (
	"strings"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/logging"
	"github.com/SlpAus/reaction-game-backend/internal/platform/respond"
	"github.com/SlpAus/reaction-game-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey 是已认证用户ID在gin上下文中的键名
	UserIDKey    = "userID"
	bearerPrefix = "Bearer "
)

// RequireAuth 校验 Authorization 头中的Bearer令牌，并将用户ID放入gin上下文。
// 令牌的签发由外部认证服务负责。
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			respond.Error(c, apperr.Unauthenticated("缺少访问令牌"))
			c.Abort()
			return
		}

		userID, err := token.ParseAccessToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			logging.FromContext(c).WithError(err).Debug("访问令牌校验失败")
			respond.Error(c, apperr.Unauthenticated("访问令牌无效或已过期"))
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// CurrentUserID 返回 RequireAuth 写入的用户ID
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(UserIDKey)
}
