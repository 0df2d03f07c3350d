package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// cacheVersionKey 是一个Redis计数器，每次排行榜变化时自增，
	// 旧版本的缓存键因此失效，并在TTL到期后自然清理。
	cacheVersionKey = "leaderboard:cache:version"
	// cacheKeyPrefix 是缓存条目的键前缀。
	// Key: leaderboard:cache:v<version>:<difficulty>:<limit>:<search>
	// Value: []RankedEntry 的JSON
	cacheKeyPrefix = "leaderboard:cache:v"
)

var cacheTTL = 30 * time.Second

// ConfigureCache 设置缓存条目的存活时间
func ConfigureCache(ttl time.Duration) {
	if ttl > 0 {
		cacheTTL = ttl
	}
}

func cacheEnabled() bool {
	return database.RDB != nil && database.IsRedisHealthy()
}

func cacheKey(ctx context.Context, q Query) (string, error) {
	version, err := database.RDB.Get(ctx, cacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s%d:%s:%d:%s", cacheKeyPrefix, version, q.Difficulty, q.Limit, q.Search), nil
}

// ListCached 优先从Redis读取排行榜，未命中或Redis不可用时回源数据库并回填缓存。
// 缓存失败只记录日志，不影响读取结果。
func ListCached(ctx context.Context, q Query) ([]RankedEntry, error) {
	if !cacheEnabled() {
		return List(database.DB.WithContext(ctx), q)
	}

	key, err := cacheKey(ctx, q)
	if err != nil {
		logrus.WithError(err).Warn("读取排行榜缓存版本失败，直接查询数据库")
		return List(database.DB.WithContext(ctx), q)
	}

	if raw, err := database.RDB.Get(ctx, key).Bytes(); err == nil {
		var cached []RankedEntry
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		logrus.WithError(err).Warn("读取排行榜缓存失败")
	}

	entries, err := List(database.DB.WithContext(ctx), q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := database.RDB.Set(ctx, key, data, cacheTTL).Err(); err != nil {
			logrus.WithError(err).Warn("回填排行榜缓存失败")
		}
	}
	return entries, nil
}

// InvalidateCache 让所有已缓存的排行榜失效。应在排行榜写入事务提交之后调用。
func InvalidateCache(ctx context.Context) {
	if !cacheEnabled() {
		return
	}
	if err := database.RDB.Incr(ctx, cacheVersionKey).Err(); err != nil {
		// 版本号没有推进，旧缓存仍然可读。停用缓存，由健康检查器的恢复操作补上这次失效。
		logrus.WithError(err).Warn("排行榜缓存失效失败")
		database.ReportRedisFailure()
	}
}

// ResetCache 在Redis恢复时调用，此时健康标志尚未恢复，因此不检查健康状态
func ResetCache(ctx context.Context) error {
	if database.RDB == nil {
		return nil
	}
	return database.RDB.Incr(ctx, cacheVersionKey).Err()
}
