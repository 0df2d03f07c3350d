package session

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

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("对局 %q 不存在", c.Param("id"))
	}
	return uint(id), nil
}

// CreateSession 提交一局对局
func CreateSession(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, err)
		return
	}

	result, err := Create(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListSessions 返回当前用户的对局，支持 difficulty、is_completed、ordering 查询参数
func ListSessions(c *gin.Context) {
	q := ListQuery{
		Difficulty: game.Difficulty(c.Query("difficulty")),
		Ordering:   c.Query("ordering"),
	}
	if raw := c.Query("is_completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, apperr.Validation("is_completed 必须是布尔值"))
			return
		}
		q.Completed = &completed
	}

	sessions, err := List(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), q)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetLatestSession 返回当前用户最近的一局
func GetLatestSession(c *gin.Context) {
	s, err := Latest(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetSession 返回当前用户的某一局
func GetSession(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	s, err := Get(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSession 部分更新当前用户的某一局
func UpdateSession(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, err)
		return
	}

	s, err := Update(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), id, in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
