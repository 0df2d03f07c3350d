package health

import (
	"context"
	"net/http"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// Report 是 /healthz 的响应体
type Report struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Handler 返回存储与缓存的健康状态。数据库不可用时返回503，Redis只影响缓存，不影响状态码。
func Handler(checker *Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := Report{Database: "ok", Redis: "disabled"}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if sqlDB, err := database.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			report.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}

		switch {
		case checker != nil:
			report.Redis = checker.State().String()
		case database.RDB != nil:
			if database.IsRedisHealthy() {
				report.Redis = StateHealthy.String()
			} else {
				report.Redis = StateDegraded.String()
			}
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(status, report)
	}
}
