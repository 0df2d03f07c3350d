package leaderboard

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/reaction-game-backend/internal/game"
	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/respond"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// parseQuery 从查询参数中解析难度与数量
func parseQuery(c *gin.Context) (Query, error) {
	var q Query

	if raw := c.Query("difficulty"); raw != "" {
		d, ok := game.ParseDifficulty(raw)
		if !ok {
			return q, apperr.Validation("无效的难度: %q", raw)
		}
		q.Difficulty = d
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.Wrap(apperr.KindValidation, err, "limit 必须是正整数")
		}
		if limit <= 0 {
			return q, apperr.Validation("limit 必须是正整数")
		}
		q.Limit = limit
	}

	q.Search = c.Query("search")
	return q, nil
}

// GetLeaderboard 返回排行榜，无需登录
func GetLeaderboard(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	entries, err := ListCached(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetTop 返回前N名，默认10条
func GetTop(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		respond.Error(c, err)
		return
	}
	q.Limit = normalizeLimit(q.Limit, DefaultTopLimit)
	q.Search = ""

	entries, err := ListCached(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetMyEntry 返回当前用户在指定难度下的个人最佳，需要登录
func GetMyEntry(c *gin.Context) {
	raw := c.Query("difficulty")
	d, ok := game.ParseDifficulty(raw)
	if !ok {
		respond.Error(c, apperr.Validation("无效的难度: %q", raw))
		return
	}

	entry, err := Get(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), d)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if entry == nil {
		respond.Error(c, apperr.NotFound("该难度下还没有成绩"))
		return
	}
	c.JSON(http.StatusOK, entry)
}
