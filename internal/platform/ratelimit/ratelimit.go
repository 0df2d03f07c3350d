// Package ratelimit 基于Redis有序集合实现按用户的滑动窗口限流。
package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/apperr"
	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/SlpAus/reaction-game-backend/internal/platform/logging"
	"github.com/SlpAus/reaction-game-backend/internal/platform/respond"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// keyPrefix 是限流有序集合的键名前缀。
// Key: ratelimit:<scope>:<userID>  Member: 请求唯一ID  Score: 请求时间（微秒）
const keyPrefix = "ratelimit:"

// memberID 生成16字节的唯一成员：8字节纳秒时间戳加8字节随机数
func memberID(t time.Time) (string, error) {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], uint64(t.UnixNano()))
	if _, err := rand.Read(b[8:16]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func key(scope string, userID uint) string {
	return keyPrefix + scope + ":" + strconv.FormatUint(uint64(userID), 10)
}

// Hit 在窗口中记录一次请求并返回窗口内的请求总数
func Hit(ctx context.Context, rdb *redis.Client, k string, window time.Duration, now time.Time) (int64, error) {
	member, err := memberID(now)
	if err != nil {
		return 0, fmt.Errorf("生成限流成员失败: %w", err)
	}
	minScore := float64(now.Add(-window).UnixMicro())

	pipe := rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", fmt.Sprintf("(%f", minScore))
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMicro()), Member: member})
	pipe.Expire(ctx, k, window+time.Minute)
	count := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("执行限流事务失败: %w", err)
	}
	return count.Val(), nil
}

// PerUser 返回一个限制已认证用户写请求频率的中间件，必须放在认证中间件之后。
// Redis未启用或不健康时直接放行。
func PerUser(scope string, cfg config.RateLimitConfig, userID func(*gin.Context) uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.MaxRequests <= 0 || !database.IsRedisHealthy() {
			c.Next()
			return
		}

		count, err := Hit(c.Request.Context(), database.RDB, key(scope, userID(c)), cfg.Window, time.Now())
		if err != nil {
			logging.FromContext(c).WithError(err).Warn("限流检查失败，放行请求")
			c.Next()
			return
		}
		if count > cfg.MaxRequests {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			respond.Error(c, apperr.RateLimited("请求过于频繁，请稍后再试"))
			c.Abort()
			return
		}
		c.Next()
	}
}
