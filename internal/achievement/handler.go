package achievement

import (
	"net/http"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/respond"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// GetAchievements 返回完整成就目录，支持 ?type= 过滤，无需登录
func GetAchievements(c *gin.Context) {
	t := Type(c.Query("type"))
	if t != "" && !t.Valid() {
		respond.Error(c, apperr.Validation("无效的成就分类: %q", t))
		return
	}

	achievements, err := ListCatalog(database.DB.WithContext(c.Request.Context()), t)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

// GetUserAchievements 返回当前用户已解锁的成就
func GetUserAchievements(c *gin.Context) {
	items, err := ListUnlocked(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
