package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RDB 是全局的Redis客户端实例。未启用Redis时为nil，调用方需要先检查。
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis的连接。未启用时直接返回。
func InitRedis(cfg config.RedisConfig) error {
	if !cfg.Enabled {
		logrus.Info("Redis未启用，排行榜缓存关闭。")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(Ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("无法连接到Redis: %w", err)
	}

	RDB = client
	UpdateRedisStatus(true)
	logrus.WithField("address", cfg.Address).Info("Redis 连接成功！")
	return nil
}

// CloseRedis 关闭Redis连接
func CloseRedis() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
