package api

import (
	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/friendship"
	"github.com/SlpAus/reaction-game-backend/internal/leaderboard"
	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/SlpAus/reaction-game-backend/internal/platform/health"
	"github.com/SlpAus/reaction-game-backend/internal/platform/ratelimit"
	"github.com/SlpAus/reaction-game-backend/internal/session"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, checker *health.Checker, limits config.RateLimitConfig) {
	router.GET("/healthz", health.Handler(checker))

	api := router.Group("/api")
	{
		// 公开的只读接口
		api.GET("/leaderboard", leaderboard.GetLeaderboard)
		api.GET("/leaderboard/top", leaderboard.GetTop)
		api.GET("/achievements", achievement.GetAchievements)

		authed := api.Group("", user.RequireAuth())

		// 对局相关的路由组 /api/sessions
		sessionRoutes := authed.Group("/sessions")
		{
			sessionRoutes.POST("", ratelimit.PerUser("sessions", limits, user.CurrentUserID), session.CreateSession)
			sessionRoutes.GET("", session.ListSessions)
			sessionRoutes.GET("/latest", session.GetLatestSession)
			sessionRoutes.GET("/:id", session.GetSession)
			sessionRoutes.PATCH("/:id", session.UpdateSession)
		}

		authed.GET("/leaderboard/me", leaderboard.GetMyEntry)
		authed.GET("/user-achievements", achievement.GetUserAchievements)

		// 好友相关的路由组 /api/friends
		friendRoutes := authed.Group("/friends")
		{
			friendRoutes.GET("", friendship.ListFriendships)
			friendRoutes.POST("", ratelimit.PerUser("friend-requests", limits, user.CurrentUserID), friendship.CreateRequest)
			friendRoutes.GET("/friends", friendship.GetFriends)
			friendRoutes.GET("/search", friendship.SearchUsers)
			friendRoutes.POST("/:id/accept", friendship.AcceptRequest)
			friendRoutes.POST("/:id/reject", friendship.RejectRequest)
			friendRoutes.POST("/:id/cancel", friendship.CancelRequest)
			friendRoutes.GET("/:id/profile", friendship.GetFriendProfile)
		}
	}
}
