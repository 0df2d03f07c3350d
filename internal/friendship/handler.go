package friendship

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/respond"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("%q 不存在", c.Param("id"))
	}
	return uint(id), nil
}

func views(items []Friendship) []View {
	out := make([]View, 0, len(items))
	for _, f := range items {
		out = append(out, f.View())
	}
	return out
}

// ListFriendships 返回与当前用户相关的好友关系，支持 ?status= 过滤
func ListFriendships(c *gin.Context) {
	items, err := List(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), Status(c.Query("status")))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, views(items))
}

// CreateRequest 发起好友请求
func CreateRequest(c *gin.Context) {
	var in RequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, err)
		return
	}

	f, err := Request(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), in.FriendIdentifier)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, f.View())
}

// AcceptRequest 接受好友请求
func AcceptRequest(c *gin.Context) {
	transition(c, Accept)
}

// RejectRequest 拒绝好友请求
func RejectRequest(c *gin.Context) {
	transition(c, Reject)
}

func transition(c *gin.Context, apply func(db *gorm.DB, id, actor uint) (*Friendship, error)) {
	id, err := parseID(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	f, err := apply(database.DB.WithContext(c.Request.Context()), id, user.CurrentUserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, f.View())
}

// CancelRequest 撤回自己发出的待处理请求
func CancelRequest(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	if err := Cancel(database.DB.WithContext(c.Request.Context()), id, user.CurrentUserID(c)); err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetFriends 返回当前用户的好友
func GetFriends(c *gin.Context) {
	friends, err := ListFriends(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

// SearchUsers 搜索可以添加为好友的用户
func SearchUsers(c *gin.Context) {
	candidates, err := Search(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), c.Query("q"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

// GetFriendProfile 返回好友的资料页，:id 是目标用户的ID
func GetFriendProfile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respond.Error(c, err)
		return
	}

	p, err := GetProfile(database.DB.WithContext(c.Request.Context()), user.CurrentUserID(c), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
