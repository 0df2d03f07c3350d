package achievement

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移成就相关表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Achievement{}, &UserAchievement{}); err != nil {
		return fmt.Errorf("无法迁移achievement表: %w", err)
	}
	logrus.Debug("Achievement数据库表迁移成功。")
	return nil
}
