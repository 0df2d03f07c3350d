package leaderboard

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移排行榜表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("无法迁移leaderboard表: %w", err)
	}
	logrus.Debug("Leaderboard数据库表迁移成功。")
	return nil
}
