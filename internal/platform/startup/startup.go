package startup

import (
	"context"

	"github.com/SlpAus/reaction-game-backend/internal/achievement"
	"github.com/SlpAus/reaction-game-backend/internal/friendship"
	"github.com/SlpAus/reaction-game-backend/internal/game"
	"github.com/SlpAus/reaction-game-backend/internal/leaderboard"
	"github.com/SlpAus/reaction-game-backend/internal/platform/config"
	"github.com/SlpAus/reaction-game-backend/internal/platform/metadata"
	"github.com/SlpAus/reaction-game-backend/internal/session"
	"github.com/SlpAus/reaction-game-backend/internal/user"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 按依赖顺序迁移所有模块的表结构
func Migrate(db *gorm.DB) error {
	steps := []func(*gorm.DB) error{
		metadata.Migrate,
		user.Migrate,
		session.Migrate,
		leaderboard.Migrate,
		achievement.Migrate,
		friendship.Migrate,
	}
	for _, migrate := range steps {
		if err := migrate(db); err != nil {
			return err
		}
	}
	return nil
}

// InitializeApplication 是应用启动时执行的总入口：注册校验器、迁移表结构、同步成就目录
func InitializeApplication(db *gorm.DB, cfg *config.Config) error {
	logrus.Info("开始应用初始化...")

	if err := game.RegisterValidators(); err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	if err := SyncCatalog(db, cfg.Achievements.CatalogFile); err != nil {
		return err
	}
	leaderboard.ConfigureCache(cfg.Redis.CacheTTL)

	logrus.Info("应用初始化完成！")
	return nil
}

// HandleRedisRecovery 在Redis重启或断线恢复后使排行榜缓存失效
func HandleRedisRecovery(ctx context.Context) error {
	logrus.Info("检测到Redis已恢复，正在使排行榜缓存失效...")
	return leaderboard.ResetCache(ctx)
}
